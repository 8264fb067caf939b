package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/backoffice/internal/analytics"
	"github.com/odyssey-erp/backoffice/internal/apiclient"
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
)

// NewHandler assembles every section behind the middleware stack.
func NewHandler(cfg *Config, logger *slog.Logger, redisClient *redis.Client) (http.Handler, error) {
	metrics := observability.NewMetrics()
	client, err := apiclient.New(apiclient.Config{
		BaseURL:  cfg.APIBaseURL,
		Timeout:  cfg.APITimeout,
		Logger:   logger,
		Observer: metrics,
	})
	if err != nil {
		return nil, err
	}

	templates, err := view.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	kit := console.NewKit(view.NewResponder(templates, logger), csrfManager, logger)
	rbacMiddleware := rbac.Middleware{Logger: logger}

	return NewRouter(RouterParams{
		Logger:           logger,
		Config:           cfg,
		Kit:              kit,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		RBACMiddleware:   rbacMiddleware,
		Metrics:          metrics,
		AuthHandler:      auth.NewHandler(logger, auth.NewService(client), kit, sessionManager),
		CatalogHandler:   catalog.NewHandler(kit, client, rbacMiddleware),
		SalesHandler:     sales.NewHandler(kit, client, rbacMiddleware),
		StaffHandler:     staff.NewHandler(kit, client, rbacMiddleware),
		AnalyticsHandler: analytics.NewHandler(kit, client, rbacMiddleware),
		UploadsHandler:   uploads.NewHandler(client, logger),
	}), nil
}
