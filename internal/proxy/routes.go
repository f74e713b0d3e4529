package proxy

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/coop-gateway/internal/domain"
)

// Routes is the declarative proxy surface. Admin resources demand an active
// subscription; billing and renewal endpoints must stay reachable on an
// expired one, or a tenant could never recover.
func Routes() []Route {
	adminRoles := []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin}
	anyMember := []domain.Role{domain.RoleMember, domain.RoleAdmin, domain.RoleSuperAdmin}
	superAdmin := []domain.Role{domain.RoleSuperAdmin}

	return []Route{
		// Public landing-page content, resolved per tenant.
		{Method: fiber.MethodGet, Path: "/api/landing-page", UpstreamPath: "/landing-page/public", Public: true},

		// Admin user management.
		{Method: fiber.MethodGet, Path: "/api/admin/users", UpstreamPath: "/users", Roles: adminRoles, RequireSub: true},
		{Method: fiber.MethodPost, Path: "/api/admin/users", UpstreamPath: "/users", Roles: adminRoles, RequireSub: true},
		{Method: fiber.MethodGet, Path: "/api/admin/users/stats", UpstreamPath: "/users/stats", Roles: adminRoles, RequireSub: true},
		{Method: fiber.MethodPost, Path: "/api/admin/users/:id/toggle-status", UpstreamPath: "/users/:id/toggle-status", Roles: adminRoles, RequireSub: true},

		// Landing-page management and publishing.
		{Method: fiber.MethodGet, Path: "/api/admin/landing-page", UpstreamPath: "/landing-page", Roles: adminRoles, RequireSub: true},
		{Method: fiber.MethodPost, Path: "/api/admin/landing-page", UpstreamPath: "/landing-page", Roles: adminRoles, RequireSub: true},
		{Method: fiber.MethodPost, Path: "/api/admin/landing-page/publish", UpstreamPath: "/landing-page/publish", Roles: adminRoles, RequireSub: true},

		// Properties.
		{Method: fiber.MethodGet, Path: "/api/admin/properties", UpstreamPath: "/properties", Roles: adminRoles, RequireSub: true},
		{Method: fiber.MethodPost, Path: "/api/admin/properties", UpstreamPath: "/properties", Roles: adminRoles, RequireSub: true},

		// Bulk member template download; the upload itself is handled
		// locally so the job can be recorded before forwarding.
		{Method: fiber.MethodGet, Path: "/api/bulk/members/template", UpstreamPath: "/members/bulk/template", Roles: adminRoles, RequireSub: true},

		// Member financials.
		{Method: fiber.MethodGet, Path: "/api/financial/contributions", UpstreamPath: "/contributions", Roles: anyMember},
		{Method: fiber.MethodGet, Path: "/api/financial/loans", UpstreamPath: "/loans", Roles: anyMember},

		// Subscription management; never gated on an active subscription.
		{Method: fiber.MethodGet, Path: "/api/subscriptions", UpstreamPath: "/subscriptions", Roles: adminRoles},
		{Method: fiber.MethodPost, Path: "/api/subscriptions", UpstreamPath: "/subscriptions", Roles: adminRoles},
		{Method: fiber.MethodGet, Path: "/api/subscriptions/status", UpstreamPath: "/subscriptions/status", Roles: anyMember},
		{Method: fiber.MethodPost, Path: "/api/subscriptions/renew", UpstreamPath: "/subscriptions/renew", Roles: adminRoles},

		// Custom domain management, super-admin only.
		{Method: fiber.MethodGet, Path: "/api/domains", UpstreamPath: "/domains", Roles: superAdmin, SuperAdmin: true},
		{Method: fiber.MethodPost, Path: "/api/domains", UpstreamPath: "/domains", Roles: superAdmin, SuperAdmin: true},
		{Method: fiber.MethodPost, Path: "/api/domains/:id/verify", UpstreamPath: "/domains/:id/verify", Roles: superAdmin, SuperAdmin: true},
	}
}
