// Package console holds the page plumbing shared by every back-office
// section: template data, list and detail composition, form validation and
// the confirm-then-delete flow.
package console

import (
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/backoffice/internal/listing"
	"github.com/odyssey-erp/backoffice/internal/rbac"
	"github.com/odyssey-erp/backoffice/internal/session"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

// GenericFailure is the only message shown when a mutation fails.
const GenericFailure = "Something went wrong"

// Kit bundles the collaborators every section handler needs.
type Kit struct {
	Responder *view.Responder
	CSRF      *shared.CSRFManager
	Confirm   *shared.ConfirmManager
	Tracker   *listing.Tracker
	Validate  *validator.Validate
	Logger    *slog.Logger
}

// NewKit wires a Kit. The validator reports field names from `form` tags.
func NewKit(responder *view.Responder, csrf *shared.CSRFManager, logger *slog.Logger) *Kit {
	if logger == nil {
		logger = slog.Default()
	}
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return &Kit{
		Responder: responder,
		CSRF:      csrf,
		Confirm:   shared.NewConfirmManager(csrf),
		Tracker:   listing.NewTracker(),
		Validate:  validate,
		Logger:    logger,
	}
}

// Page builds the template data shared by every page.
func (k *Kit) Page(r *http.Request, title string, data any) view.TemplateData {
	webSess := shared.SessionFromContext(r.Context())
	token := ""
	if webSess != nil && k.CSRF != nil {
		var err error
		if token, err = k.CSRF.EnsureToken(webSess); err != nil {
			k.Logger.Error("ensure csrf token", slog.Any("error", err))
		}
	}
	sess := session.FromContext(r.Context())
	return view.TemplateData{
		Title:       title,
		CSRFToken:   token,
		Flash:       webSess.PopFlash(),
		CurrentPath: r.URL.Path,
		UserName:    sess.DisplayName(),
		Nav:         rbac.Navigation(sess, r.URL.Path),
		Data:        data,
	}
}

// Render writes a page with the shared template data.
func (k *Kit) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	k.Responder.Render(w, status, name, k.Page(r, title, data))
}

// RenderForm writes the generic form page.
func (k *Kit) RenderForm(w http.ResponseWriter, r *http.Request, status int, form view.FormPage) {
	k.Render(w, r, status, "pages/form.html", form.Heading, form)
}

// RedirectWithFlash stores a flash message and redirects with 303.
func (k *Kit) RedirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// MutationFailed logs the failure and re-renders the form with the generic
// message. Backend detail never reaches the page.
func (k *Kit) MutationFailed(w http.ResponseWriter, r *http.Request, form view.FormPage, op string, err error) {
	k.Logger.Error(op, slog.Any("error", err))
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: GenericFailure})
	}
	k.RenderForm(w, r, http.StatusBadRequest, form.WithErrors(map[string]string{"general": GenericFailure}))
}

// Check validates a form struct and returns field errors keyed by form name.
func (k *Kit) Check(form any) map[string]string {
	err := k.Validate.Struct(form)
	if err == nil {
		return nil
	}
	errs := make(map[string]string)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["general"] = GenericFailure
		return errs
	}
	for _, fe := range verrs {
		errs[fe.Field()] = fieldMessage(fe)
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		return label + " must be at least " + fe.Param()
	case "max":
		return label + " must be at most " + fe.Param()
	case "oneof":
		return label + " must be one of " + fe.Param()
	case "numeric", "number":
		return label + " must be a number"
	case "email":
		return label + " must be a valid email"
	default:
		return label + " is invalid"
	}
}
