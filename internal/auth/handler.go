package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/console"
	"github.com/odyssey-erp/backoffice/internal/session"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

const invalidCredentials = "Invalid mobile number or password"

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	kit            *console.Kit
	sessionManager *shared.SessionManager
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, kit *console.Kit, sessions *shared.SessionManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		kit:            kit,
		sessionManager: sessions,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Identifier string `form:"identifier" validate:"required"`
	Password   string `form:"password" validate:"required"`
}

func loginPage(form loginForm) view.FormPage {
	return view.FormPage{
		Heading: "Sign in",
		Action:  "/auth/login",
		Submit:  "Sign in",
		Sections: []view.FormSection{{Fields: []view.FormField{
			{Name: "identifier", Label: "Mobile number", Type: "tel", Value: form.Identifier, Placeholder: "+8801XXXXXXXXX", Required: true},
			{Name: "password", Label: "Password", Type: "password", Required: true},
		}}},
	}
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.kit.Render(w, r, http.StatusOK, "pages/login.html", "Sign in", loginPage(loginForm{}))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := loginForm{
		Identifier: r.PostFormValue("identifier"),
		Password:   r.PostFormValue("password"),
	}
	if errs := h.kit.Check(form); len(errs) > 0 {
		h.kit.Render(w, r, http.StatusBadRequest, "pages/login.html", "Sign in", loginPage(form).WithErrors(errs))
		return
	}

	sess, err := h.service.SignIn(r.Context(), form.Identifier, form.Password)
	if err != nil {
		h.logger.Error("sign in", slog.Any("error", err))
		h.kit.Render(w, r, http.StatusBadGateway, "pages/login.html", "Sign in", loginPage(form).WithErrors(map[string]string{"general": console.GenericFailure}))
		return
	}
	if sess == nil {
		h.kit.Render(w, r, http.StatusBadRequest, "pages/login.html", "Sign in", loginPage(form).WithErrors(map[string]string{"general": invalidCredentials}))
		return
	}

	profile, err := h.service.FetchProfile(r.Context(), sess)
	if err != nil {
		h.logger.Error("fetch profile after sign in", slog.Any("error", err))
		h.kit.Render(w, r, http.StatusBadGateway, "pages/login.html", "Sign in", loginPage(form).WithErrors(map[string]string{"general": console.GenericFailure}))
		return
	}

	webSess := shared.SessionFromContext(r.Context())
	if webSess == nil {
		h.logger.Error("session missing during login")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.sessionManager.Rotate(webSess)
	webSess.Delete(shared.CSRFSessionKey)
	if err := session.Persist(webSess, sess.Token, profile); err != nil {
		h.logger.Error("persist session", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.logger.Info("signed in", slog.String("subject", sess.Account.Subject), slog.String("role", string(profile.Role)))
	h.kit.RedirectWithFlash(w, r, "/", "success", "Welcome back")
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if webSess := shared.SessionFromContext(r.Context()); webSess != nil {
		session.Clear(webSess)
		h.sessionManager.Destroy(webSess)
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}
