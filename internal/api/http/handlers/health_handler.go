package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/coop-gateway/internal/persistence"
)

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	redis *persistence.Redis
}

// NewHealthHandler constructs handler.
func NewHealthHandler(redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{redis: redis}
}

// Live handles GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready handles GET /health/ready. Redis backs sessions and the tenant
// cache, so it gates readiness.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.redis != nil {
		if err := h.redis.Ping(c.Context()); err != nil {
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "degraded",
				"redis":  err.Error(),
			})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
