package console

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/session"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

// RemoveFunc issues the backend delete; apiclient.Resource.Delete fits.
type RemoveFunc func(ctx context.Context, sess *session.Session, id string) error

// DeleteConfig describes the confirm-then-delete flow of one resource.
type DeleteConfig struct {
	What     string
	BasePath string
	Remove   RemoveFunc
}

func (cfg DeleteConfig) subject(id string) string {
	return "delete:" + cfg.BasePath + "/" + id
}

// ConfirmDelete renders the confirmation step and issues the one-time token
// the delete step must present.
func ConfirmDelete(k *Kit, cfg DeleteConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		webSess := shared.SessionFromContext(r.Context())
		if webSess == nil {
			k.Responder.ServerError(w, k.Page(r, "Error", nil), "")
			return
		}
		token, err := k.Confirm.Issue(webSess, cfg.subject(id))
		if err != nil {
			k.Logger.Error("issue confirm token", slog.Any("error", err))
			k.Responder.ServerError(w, k.Page(r, "Error", nil), "")
			return
		}
		detailURL := cfg.BasePath + "/" + id
		k.Render(w, r, http.StatusOK, "pages/confirm.html", "Delete "+cfg.What, view.ConfirmPage{
			Heading:   "Delete " + cfg.What + "?",
			Message:   "This cannot be undone.",
			Action:    detailURL + "/delete",
			Token:     token,
			TokenName: shared.ConfirmFormField,
			CancelURL: detailURL,
		})
	}
}

// Delete performs the confirmed delete. Without a valid confirmation token
// no backend call is made.
func Delete(k *Kit, cfg DeleteConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		detailURL := cfg.BasePath + "/" + id
		if err := r.ParseForm(); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		err := k.Confirm.Consume(shared.SessionFromContext(r.Context()), cfg.subject(id), r.PostFormValue(shared.ConfirmFormField))
		if err != nil {
			if !errors.Is(err, shared.ErrConfirmationRequired) {
				k.Logger.Error("consume confirm token", slog.Any("error", err))
			}
			k.RedirectWithFlash(w, r, detailURL+"/delete", "warning", "Please confirm the deletion")
			return
		}
		if err := cfg.Remove(r.Context(), session.FromContext(r.Context()), id); err != nil {
			k.Logger.Error("delete "+cfg.BasePath, slog.String("id", id), slog.Any("error", err))
			k.RedirectWithFlash(w, r, detailURL, "error", GenericFailure)
			return
		}
		k.RedirectWithFlash(w, r, cfg.BasePath, "success", cfg.What+" deleted")
	}
}
