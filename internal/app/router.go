package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/backoffice/internal/analytics"
	"github.com/odyssey-erp/backoffice/internal/auth"
	"github.com/odyssey-erp/backoffice/internal/catalog"
	"github.com/odyssey-erp/backoffice/internal/console"
	"github.com/odyssey-erp/backoffice/internal/observability"
	"github.com/odyssey-erp/backoffice/internal/rbac"
	"github.com/odyssey-erp/backoffice/internal/sales"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/staff"
	"github.com/odyssey-erp/backoffice/internal/uploads"
	"github.com/odyssey-erp/backoffice/internal/view"
	"github.com/odyssey-erp/backoffice/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Kit            *console.Kit
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	RBACMiddleware rbac.Middleware
	Metrics        *observability.Metrics

	AuthHandler      *auth.Handler
	CatalogHandler   *catalog.Handler
	SalesHandler     *sales.Handler
	StaffHandler     *staff.Handler
	AnalyticsHandler *analytics.Handler
	UploadsHandler   *uploads.Handler
}

// NewRouter constructs the chi.Router with back-office defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}
	if !InTestMode() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.With(params.RBACMiddleware.RequireSession).Get("/", func(w http.ResponseWriter, r *http.Request) {
		params.Kit.Render(w, r, http.StatusOK, "pages/home.html", "Back office", nil)
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.CatalogHandler != nil {
		r.Route("/catalog", params.CatalogHandler.MountRoutes)
	}
	if params.SalesHandler != nil {
		r.Route("/sales", params.SalesHandler.MountRoutes)
	}
	if params.StaffHandler != nil {
		r.Route("/staff", params.StaffHandler.MountRoutes)
	}
	if params.AnalyticsHandler != nil {
		r.Route("/analytics", params.AnalyticsHandler.MountRoutes)
	}
	if params.UploadsHandler != nil {
		r.Route("/uploads", params.UploadsHandler.MountRoutes)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		params.Kit.Responder.NotFound(w, params.Kit.Page(r, "Not found", nil), view.NotFoundPage{What: "Page", BackURL: "/"})
	})

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler lets browsers keep static assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
