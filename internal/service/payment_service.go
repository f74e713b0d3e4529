package service

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/coop-gateway/internal/config"
	"github.com/spec-kit/coop-gateway/internal/domain"
	"github.com/spec-kit/coop-gateway/internal/events"
	"github.com/spec-kit/coop-gateway/internal/observability"
	"github.com/spec-kit/coop-gateway/internal/payments"
	"github.com/spec-kit/coop-gateway/internal/repository"
	apperrors "github.com/spec-kit/coop-gateway/pkg/util"
)

// PaymentService coordinates provider calls with the local transaction record.
type PaymentService struct {
	providers    *payments.Registry
	transactions repository.TransactionRepository
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	metrics      *observability.Metrics
	successURL   string
	failureURL   string
}

// PaymentDependencies encapsulates requirements for the payment service.
type PaymentDependencies struct {
	Providers    *payments.Registry
	Transactions repository.TransactionRepository
	Dispatcher   events.Dispatcher
}

// NewPaymentService builds the service.
func NewPaymentService(cfg config.PaymentsConfig, deps PaymentDependencies, logger *zap.Logger, metrics *observability.Metrics) *PaymentService {
	return &PaymentService{
		providers:    deps.Providers,
		transactions: deps.Transactions,
		dispatcher:   deps.Dispatcher,
		logger:       logger,
		metrics:      metrics,
		successURL:   cfg.CallbackSuccessURL,
		failureURL:   cfg.CallbackFailureURL,
	}
}

// InitializePaymentInput describes a payment to start.
type InitializePaymentInput struct {
	TenantSlug  string
	UserID      string
	Email       string
	Provider    domain.PaymentProviderName
	Amount      float64
	Currency    string
	CallbackURL string
}

// InitializePaymentOutput carries the reference and redirect target.
type InitializePaymentOutput struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
}

// Initialize records a pending transaction and starts it with the provider.
func (s *PaymentService) Initialize(ctx context.Context, in InitializePaymentInput) (*InitializePaymentOutput, error) {
	if in.Amount <= 0 {
		return nil, apperrors.NewValidationError("amount must be positive", nil)
	}
	if in.Currency == "" {
		in.Currency = "NGN"
	}

	provider, err := s.providers.Get(in.Provider)
	if err != nil {
		return nil, err
	}

	reference := uuid.NewString()
	tx := &domain.PaymentTransaction{
		TenantSlug: in.TenantSlug,
		UserID:     in.UserID,
		Provider:   in.Provider,
		Reference:  reference,
		Amount:     in.Amount,
		Currency:   in.Currency,
		Status:     domain.TransactionPending,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, apperrors.MapError(err)
	}

	result, err := provider.Initialize(ctx, payments.InitializeRequest{
		Reference:   reference,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Email:       in.Email,
		CallbackURL: in.CallbackURL,
	})
	if err != nil {
		s.metrics.RecordProviderCall(string(in.Provider), "initialize", "error")
		if updateErr := s.transactions.UpdateStatus(ctx, reference, domain.TransactionFailed, err.Error()); updateErr != nil {
			s.logger.Error("failed to mark transaction failed", zap.String("reference", reference), zap.Error(updateErr))
		}
		return nil, err
	}
	s.metrics.RecordProviderCall(string(in.Provider), "initialize", "ok")

	if err := s.transactions.SetProviderReference(ctx, reference, result.ProviderReference, result.AuthorizationURL); err != nil {
		s.logger.Error("failed to store provider reference", zap.String("reference", reference), zap.Error(err))
	}

	s.publish(ctx, events.EventPaymentInitialized, in.TenantSlug, events.PaymentInitializedPayload{
		Reference: reference,
		Provider:  in.Provider,
		Amount:    in.Amount,
		Currency:  in.Currency,
	})

	return &InitializePaymentOutput{
		Reference:        reference,
		AuthorizationURL: result.AuthorizationURL,
	}, nil
}

// Verify checks a pending transaction with its provider and transitions the
// local record. Verifying a settled transaction is a no-op returning the
// stored state.
func (s *PaymentService) Verify(ctx context.Context, reference string) (*domain.PaymentTransaction, error) {
	tx, err := s.transactions.GetByReference(ctx, reference)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if tx.Status != domain.TransactionPending {
		return tx, nil
	}

	provider, err := s.providers.Get(tx.Provider)
	if err != nil {
		return nil, err
	}

	providerRef := tx.ProviderReference
	if providerRef == "" {
		providerRef = tx.Reference
	}

	result, err := provider.Verify(ctx, providerRef)
	if err != nil {
		s.metrics.RecordProviderCall(string(tx.Provider), "verify", "error")
		return nil, err
	}
	s.metrics.RecordProviderCall(string(tx.Provider), "verify", "ok")

	if result.Status == domain.TransactionSuccess {
		if err := s.transactions.UpdateStatus(ctx, reference, domain.TransactionSuccess, ""); err != nil {
			return nil, apperrors.MapError(err)
		}
		s.publish(ctx, events.EventPaymentCompleted, tx.TenantSlug, events.PaymentCompletedPayload{
			Reference:   reference,
			Provider:    tx.Provider,
			AmountMinor: result.AmountMinor,
			Currency:    result.Currency,
		})
	} else {
		if err := s.transactions.UpdateStatus(ctx, reference, domain.TransactionFailed, result.FailureReason); err != nil {
			return nil, apperrors.MapError(err)
		}
		s.publish(ctx, events.EventPaymentFailed, tx.TenantSlug, events.PaymentFailedPayload{
			Reference: reference,
			Provider:  tx.Provider,
			Reason:    result.FailureReason,
		})
	}

	updated, err := s.transactions.GetByReference(ctx, reference)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return updated, nil
}

// CallbackRedirect verifies the referenced transaction and returns the page
// the browser should land on, carrying the reference.
func (s *PaymentService) CallbackRedirect(ctx context.Context, reference string) string {
	target := s.failureURL
	tx, err := s.Verify(ctx, reference)
	if err == nil && tx.Status == domain.TransactionSuccess {
		target = s.successURL
	} else if err != nil {
		s.logger.Warn("callback verification failed", zap.String("reference", reference), zap.Error(err))
	}
	return target + "?reference=" + url.QueryEscape(reference)
}

// Transactions lists the tenant's recent payment records.
func (s *PaymentService) Transactions(ctx context.Context, tenantSlug string, limit int) ([]domain.PaymentTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	list, err := s.transactions.ListByTenant(ctx, tenantSlug, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

func (s *PaymentService) publish(ctx context.Context, eventType events.EventType, tenantSlug string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		TenantSlug: tenantSlug,
		Timestamp:  time.Now(),
		Payload:    payload,
	})
}
