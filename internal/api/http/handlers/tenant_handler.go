package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/coop-gateway/internal/tenant"
)

// TenantHandler exposes the resolved tenant to the front end.
type TenantHandler struct {
	resolver *tenant.Resolver
}

// NewTenantHandler constructs handler.
func NewTenantHandler(resolver *tenant.Resolver) *TenantHandler {
	return &TenantHandler{resolver: resolver}
}

// Current handles GET /api/tenant/current.
func (h *TenantHandler) Current(c *fiber.Ctx) error {
	if resolved, ok := tenant.FromContext(c); ok {
		return c.JSON(fiber.Map{"data": resolved})
	}

	resolved, err := h.resolver.Resolve(c.UserContext(), c.Hostname(), c.Get(tenant.SlugHeader))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": resolved})
}
