// Package uploads issues presigned URLs so the browser can send product
// images straight to object storage.
package uploads

import (
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/backoffice/internal/apiclient"
	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
	"github.com/odyssey-erp/backoffice/internal/session"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

const presignPath = "/upload/presigned-url"

// PresignRequest names the file about to be uploaded.
type PresignRequest struct {
	FileName    string `json:"file_name" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"required,oneof=image/jpeg image/png image/webp image/gif"`
}

// Presigned is where the browser should PUT the file, and the key to store
// on the product afterwards.
type Presigned struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Handler serves upload endpoints. Responses are JSON problem documents on
// failure since callers are scripts, not page loads.
type Handler struct {
	client   *apiclient.Client
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewHandler builds the uploads handler.
func NewHandler(client *apiclient.Client, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	})
	return &Handler{client: client, validate: validate, logger: logger, now: time.Now}
}

// MountRoutes registers upload routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/presign", h.presign)
}

func (h *Handler) presign(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	switch {
	case !sess.Authenticated() || sess.Expired(h.now()):
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	case !sess.Can(shared.PermUploadCreate):
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}

	var req PresignRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.check(&req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	env, err := h.client.Do(r.Context(), sess, apiclient.Request{Method: http.MethodPost, Path: presignPath, Body: req})
	if err != nil {
		h.logger.Warn("presign upload", slog.String("kind", string(apiclient.KindOf(err))), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out, err := apiclient.DecodeData[Presigned](env)
	if err == nil && (out.URL == "" || out.Key == "") {
		err = &apiclient.Error{Kind: apiclient.KindMalformed, Detail: "presigned url or key missing"}
	}
	if err != nil {
		h.logger.Error("decode presigned url", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

// check validates the request and reduces the file name to its base. The
// extension must agree with the declared content type.
func (h *Handler) check(req *PresignRequest) error {
	req.FileName = path.Base(strings.ReplaceAll(strings.TrimSpace(req.FileName), `\`, "/"))
	if req.FileName == "." || req.FileName == "/" {
		req.FileName = ""
	}
	req.ContentType = strings.ToLower(strings.TrimSpace(req.ContentType))
	if err := h.validate.Struct(req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return fmt.Errorf("%w: %s is invalid", httpx.ErrValidation, verrs[0].Field())
		}
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	byExt, _, _ := mime.ParseMediaType(mime.TypeByExtension(strings.ToLower(path.Ext(req.FileName))))
	if byExt != req.ContentType {
		return fmt.Errorf("%w: file_name does not match content_type", httpx.ErrValidation)
	}
	return nil
}
