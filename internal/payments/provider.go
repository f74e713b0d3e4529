package payments

import (
	"context"
	"math"

	"github.com/spec-kit/coop-gateway/internal/domain"
	apperrors "github.com/spec-kit/coop-gateway/pkg/util"
)

// InitializeRequest describes a payment to start with a provider.
type InitializeRequest struct {
	Reference   string
	Amount      float64 // major currency units
	Currency    string
	Email       string
	CallbackURL string
}

// InitializeResult carries the provider handle for a started payment.
type InitializeResult struct {
	ProviderReference string
	AuthorizationURL  string
}

// VerifyResult is the normalized outcome of a provider verification call.
type VerifyResult struct {
	Status        domain.TransactionStatus
	AmountMinor   int64
	Currency      string
	FailureReason string
}

// Provider translates generic initialize/verify calls into a specific payment
// gateway's HTTP API. Provider errors surface as the gateway's own JSON; no
// retries are attempted.
type Provider interface {
	Name() domain.PaymentProviderName
	Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error)
	Verify(ctx context.Context, providerRef string) (*VerifyResult, error)
}

// Registry dispatches to a provider by name.
type Registry struct {
	providers map[domain.PaymentProviderName]Provider
}

// NewRegistry builds a registry over the given providers.
func NewRegistry(providers ...Provider) *Registry {
	m := make(map[domain.PaymentProviderName]Provider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return &Registry{providers: m}
}

// Get returns the provider for a name.
func (r *Registry) Get(name domain.PaymentProviderName) (Provider, error) {
	if p, ok := r.providers[name]; ok {
		return p, nil
	}
	return nil, apperrors.NewValidationError("unknown payment provider", map[string]any{"provider": string(name)})
}

// MinorUnits converts a major-unit amount to the minor unit used by Paystack
// (kobo) and Stripe (cents).
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
