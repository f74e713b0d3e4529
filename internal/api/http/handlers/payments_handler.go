package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/coop-gateway/internal/api/dto"
	"github.com/spec-kit/coop-gateway/internal/auth"
	"github.com/spec-kit/coop-gateway/internal/domain"
	"github.com/spec-kit/coop-gateway/internal/service"
	"github.com/spec-kit/coop-gateway/internal/tenant"
	apperrors "github.com/spec-kit/coop-gateway/pkg/util"
)

// PaymentsHandler exposes payment initialization, verification and the
// provider callback redirect.
type PaymentsHandler struct {
	payments *service.PaymentService
}

// NewPaymentsHandler constructs handler.
func NewPaymentsHandler(payments *service.PaymentService) *PaymentsHandler {
	return &PaymentsHandler{payments: payments}
}

// Initialize handles POST /api/payments/initialize.
func (h *PaymentsHandler) Initialize(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.InitializePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Provider == "" {
		return apperrors.NewValidationError("provider required", nil)
	}

	email := req.Email
	if email == "" && principal.Session != nil {
		email = principal.Session.User.Email
	}

	out, err := h.payments.Initialize(c.UserContext(), service.InitializePaymentInput{
		TenantSlug:  tenant.SlugFromContext(c),
		UserID:      principal.Claims.UserID,
		Email:       email,
		Provider:    domain.PaymentProviderName(req.Provider),
		Amount:      req.Amount,
		Currency:    req.Currency,
		CallbackURL: c.BaseURL() + "/api/payments/callback",
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": out})
}

// Verify handles GET /api/payments/verify?reference=.
func (h *PaymentsHandler) Verify(c *fiber.Ctx) error {
	reference := c.Query("reference")
	if reference == "" {
		return apperrors.NewValidationError("reference required", nil)
	}

	tx, err := h.payments.Verify(c.UserContext(), reference)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PaymentTransactionResponse{
		Reference: tx.Reference,
		Provider:  string(tx.Provider),
		Amount:    tx.Amount,
		Currency:  tx.Currency,
		Status:    string(tx.Status),
		Reason:    tx.FailureReason,
	}})
}

// Callback handles GET /api/payments/callback?reference=&status=. The status
// query parameter is advisory only; the transaction is verified with the
// provider before the browser is redirected.
func (h *PaymentsHandler) Callback(c *fiber.Ctx) error {
	reference := c.Query("reference")
	if reference == "" {
		return apperrors.NewValidationError("reference required", nil)
	}
	return c.Redirect(h.payments.CallbackRedirect(c.UserContext(), reference), fiber.StatusFound)
}

// Transactions handles GET /api/payments/transactions.
func (h *PaymentsHandler) Transactions(c *fiber.Ctx) error {
	list, err := h.payments.Transactions(c.UserContext(), tenant.SlugFromContext(c), c.QueryInt("limit"))
	if err != nil {
		return err
	}
	responses := make([]dto.PaymentTransactionResponse, 0, len(list))
	for _, tx := range list {
		responses = append(responses, dto.PaymentTransactionResponse{
			Reference: tx.Reference,
			Provider:  string(tx.Provider),
			Amount:    tx.Amount,
			Currency:  tx.Currency,
			Status:    string(tx.Status),
			Reason:    tx.FailureReason,
		})
	}
	return c.JSON(fiber.Map{"data": responses})
}
