package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/coop-gateway/internal/api/dto"
	"github.com/spec-kit/coop-gateway/internal/auth"
	"github.com/spec-kit/coop-gateway/internal/proxy"
	"github.com/spec-kit/coop-gateway/internal/service"
	"github.com/spec-kit/coop-gateway/internal/tenant"
	apperrors "github.com/spec-kit/coop-gateway/pkg/util"
)

// BulkHandler records member bulk uploads and forwards them upstream.
type BulkHandler struct {
	bulk *service.BulkUploadService
}

// NewBulkHandler constructs handler.
func NewBulkHandler(bulk *service.BulkUploadService) *BulkHandler {
	return &BulkHandler{bulk: bulk}
}

// Upload handles POST /api/bulk/members/upload.
func (h *BulkHandler) Upload(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.BulkUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.Members) == 0 {
		return apperrors.NewValidationError("members required", nil)
	}

	_, resp, err := h.bulk.Upload(c.UserContext(), service.BulkUploadInput{
		TenantSlug: tenant.SlugFromContext(c),
		UploaderID: principal.Claims.UserID,
		Filename:   req.Filename,
		RowCount:   len(req.Members),
		Headers:    proxy.HeadersFromContext(c),
		Body:       c.Body(),
	})
	if err != nil {
		return err
	}
	return proxy.Relay(c, resp)
}

// Jobs handles GET /api/bulk/members/jobs.
func (h *BulkHandler) Jobs(c *fiber.Ctx) error {
	jobs, err := h.bulk.Jobs(c.UserContext(), tenant.SlugFromContext(c), c.QueryInt("limit"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobs})
}
