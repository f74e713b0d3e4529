package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/coop-gateway/internal/api/http/handlers"
	"github.com/spec-kit/coop-gateway/internal/auth"
	"github.com/spec-kit/coop-gateway/internal/domain"
	"github.com/spec-kit/coop-gateway/internal/proxy"
	"github.com/spec-kit/coop-gateway/internal/subscription"
	"github.com/spec-kit/coop-gateway/internal/upstream"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health            *handlers.HealthHandler
	Auth              *handlers.AuthHandler
	Tenant            *handlers.TenantHandler
	Payments          *handlers.PaymentsHandler
	Bulk              *handlers.BulkHandler
	RouteGuard        *auth.RouteGuard
	SubscriptionGuard *subscription.Guard
	TenantMiddleware  fiber.Handler
	MetricsHandler    fiber.Handler
	Upstream          *upstream.Client
	AdminKeyHash      string
	ProxyRoutes       []proxy.Route
}

// RegisterRoutes wires HTTP routes. Guard ordering is fixed: tenant
// resolution, then authentication, then role checks, then the subscription
// gate, then the forwarded call.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.MetricsHandler != nil {
		app.Get("/metrics", cfg.MetricsHandler)
	}

	if cfg.TenantMiddleware != nil {
		app.Use("/api", cfg.TenantMiddleware)
	}

	api := app.Group("/api")
	api.Post("/auth/login", cfg.Auth.Login)
	api.Post("/auth/logout", cfg.Auth.Logout)
	api.Get("/tenant/current", cfg.Tenant.Current)

	// Provider redirects arrive without a session.
	api.Get("/payments/callback", cfg.Payments.Callback)

	payGroup := api.Group("/payments", cfg.RouteGuard.Handle)
	payGroup.Post("/initialize", cfg.Payments.Initialize)
	payGroup.Get("/verify", cfg.Payments.Verify)
	payGroup.Get("/transactions", cfg.Payments.Transactions)

	bulkGroup := api.Group("/bulk/members",
		cfg.RouteGuard.Handle,
		auth.RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin),
		cfg.SubscriptionGuard.Handle,
	)
	bulkGroup.Post("/upload", cfg.Bulk.Upload)
	bulkGroup.Get("/jobs", cfg.Bulk.Jobs)

	for _, route := range cfg.ProxyRoutes {
		chain := make([]fiber.Handler, 0, 5)
		if !route.Public {
			chain = append(chain, cfg.RouteGuard.Handle)
			if len(route.Roles) > 0 {
				chain = append(chain, auth.RequireRole(route.Roles...))
			}
			if route.SuperAdmin {
				chain = append(chain, auth.RequireSuperAdmin(cfg.AdminKeyHash))
			}
			if route.RequireSub {
				chain = append(chain, cfg.SubscriptionGuard.Handle)
			}
		}
		chain = append(chain, proxy.Forward(cfg.Upstream, route))
		app.Add(route.Method, route.Path, chain...)
	}
}
