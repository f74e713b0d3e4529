package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/coop-gateway/internal/domain"
	apperrors "github.com/spec-kit/coop-gateway/pkg/util"
)

// AdminKeyHeader carries the locally verified super-admin API key.
const AdminKeyHeader = "X-Admin-Key"

// RequireRole ensures the verified claims carry one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		for _, role := range principal.Claims.Roles {
			if _, exists := allowedSet[role]; exists {
				return c.Next()
			}
		}
		return apperrors.NewForbidden("insufficient role")
	}
}

// RequireSuperAdmin additionally verifies the local super-admin API key
// against its bcrypt hash. Token-presence alone never grants super-admin
// access.
func RequireSuperAdmin(keyHash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || !principal.HasRole(domain.RoleSuperAdmin) {
			return apperrors.NewForbidden("super admin role required")
		}
		if keyHash == "" {
			return apperrors.NewForbidden("super admin access not configured")
		}
		if err := VerifyAdminKey(keyHash, c.Get(AdminKeyHeader)); err != nil {
			return apperrors.NewForbidden("invalid admin key")
		}
		return c.Next()
	}
}
