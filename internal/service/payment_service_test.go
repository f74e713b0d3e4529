package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/coop-gateway/internal/config"
	"github.com/spec-kit/coop-gateway/internal/domain"
	"github.com/spec-kit/coop-gateway/internal/events"
	"github.com/spec-kit/coop-gateway/internal/payments"
	"github.com/spec-kit/coop-gateway/internal/repository"
)

type fakeProvider struct {
	name       domain.PaymentProviderName
	initResult *payments.InitializeResult
	initErr    error
	verify     *payments.VerifyResult
	verifyErr  error
	verifyRef  string
}

func (f *fakeProvider) Name() domain.PaymentProviderName { return f.name }

func (f *fakeProvider) Initialize(context.Context, payments.InitializeRequest) (*payments.InitializeResult, error) {
	return f.initResult, f.initErr
}

func (f *fakeProvider) Verify(_ context.Context, providerRef string) (*payments.VerifyResult, error) {
	f.verifyRef = providerRef
	return f.verify, f.verifyErr
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	var types []events.EventType
	for _, e := range d.events {
		types = append(types, e.Type)
	}
	return types
}

func newPaymentService(provider *fakeProvider) (*PaymentService, repository.TransactionRepository, *recordingDispatcher) {
	repo := repository.NewMemoryTransactionRepository()
	dispatcher := &recordingDispatcher{}
	svc := NewPaymentService(
		config.PaymentsConfig{CallbackSuccessURL: "/payments/success", CallbackFailureURL: "/payments/failure"},
		PaymentDependencies{
			Providers:    payments.NewRegistry(provider),
			Transactions: repo,
			Dispatcher:   dispatcher,
		},
		zap.NewNop(), nil,
	)
	return svc, repo, dispatcher
}

func TestInitializeRecordsPendingTransaction(t *testing.T) {
	provider := &fakeProvider{
		name:       domain.ProviderPaystack,
		initResult: &payments.InitializeResult{ProviderReference: "psk-1", AuthorizationURL: "https://checkout.example.com/psk-1"},
	}
	svc, repo, dispatcher := newPaymentService(provider)

	out, err := svc.Initialize(context.Background(), InitializePaymentInput{
		TenantSlug: "sunrise",
		UserID:     "u-1",
		Email:      "member@example.com",
		Provider:   domain.ProviderPaystack,
		Amount:     150.5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.Reference)
	require.Equal(t, "https://checkout.example.com/psk-1", out.AuthorizationURL)

	tx, err := repo.GetByReference(context.Background(), out.Reference)
	require.NoError(t, err)
	require.Equal(t, domain.TransactionPending, tx.Status)
	require.Equal(t, "psk-1", tx.ProviderReference)
	require.Equal(t, "NGN", tx.Currency)

	require.Equal(t, []events.EventType{events.EventPaymentInitialized}, dispatcher.types())
}

func TestInitializeRejectsNonPositiveAmount(t *testing.T) {
	svc, _, _ := newPaymentService(&fakeProvider{name: domain.ProviderPaystack})

	_, err := svc.Initialize(context.Background(), InitializePaymentInput{
		TenantSlug: "sunrise",
		Provider:   domain.ProviderPaystack,
		Amount:     0,
	})
	require.Error(t, err)
}

func TestInitializeMarksTransactionFailedOnProviderError(t *testing.T) {
	provider := &fakeProvider{name: domain.ProviderPaystack, initErr: errors.New("provider down")}
	svc, repo, _ := newPaymentService(provider)

	_, err := svc.Initialize(context.Background(), InitializePaymentInput{
		TenantSlug: "sunrise",
		Provider:   domain.ProviderPaystack,
		Amount:     100,
	})
	require.Error(t, err)

	list, err := repo.ListByTenant(context.Background(), "sunrise", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, domain.TransactionFailed, list[0].Status)
}

func TestVerifyTransitionsPendingToSuccess(t *testing.T) {
	provider := &fakeProvider{
		name:       domain.ProviderPaystack,
		initResult: &payments.InitializeResult{ProviderReference: "psk-1", AuthorizationURL: "https://checkout.example.com"},
		verify:     &payments.VerifyResult{Status: domain.TransactionSuccess, AmountMinor: 15050, Currency: "NGN"},
	}
	svc, _, dispatcher := newPaymentService(provider)

	out, err := svc.Initialize(context.Background(), InitializePaymentInput{
		TenantSlug: "sunrise", UserID: "u-1", Provider: domain.ProviderPaystack, Amount: 150.5,
	})
	require.NoError(t, err)

	tx, err := svc.Verify(context.Background(), out.Reference)
	require.NoError(t, err)
	require.Equal(t, domain.TransactionSuccess, tx.Status)
	// verification uses the provider's own reference once it exists
	require.Equal(t, "psk-1", provider.verifyRef)

	require.Equal(t, []events.EventType{events.EventPaymentInitialized, events.EventPaymentCompleted}, dispatcher.types())
}

func TestVerifySettledTransactionIsIdempotent(t *testing.T) {
	provider := &fakeProvider{
		name:       domain.ProviderPaystack,
		initResult: &payments.InitializeResult{ProviderReference: "psk-1"},
		verify:     &payments.VerifyResult{Status: domain.TransactionSuccess},
	}
	svc, _, dispatcher := newPaymentService(provider)

	out, err := svc.Initialize(context.Background(), InitializePaymentInput{
		TenantSlug: "sunrise", Provider: domain.ProviderPaystack, Amount: 100,
	})
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), out.Reference)
	require.NoError(t, err)

	provider.verify = &payments.VerifyResult{Status: domain.TransactionFailed, FailureReason: "should not be consulted"}
	tx, err := svc.Verify(context.Background(), out.Reference)
	require.NoError(t, err)
	require.Equal(t, domain.TransactionSuccess, tx.Status)

	// only one completion event despite the second Verify call
	require.Equal(t, []events.EventType{events.EventPaymentInitialized, events.EventPaymentCompleted}, dispatcher.types())
}

func TestVerifyUnknownReference(t *testing.T) {
	svc, _, _ := newPaymentService(&fakeProvider{name: domain.ProviderPaystack})

	_, err := svc.Verify(context.Background(), "missing")
	require.Error(t, err)
}

func TestCallbackRedirectTargets(t *testing.T) {
	provider := &fakeProvider{
		name:       domain.ProviderPaystack,
		initResult: &payments.InitializeResult{ProviderReference: "psk-1"},
		verify:     &payments.VerifyResult{Status: domain.TransactionSuccess},
	}
	svc, _, _ := newPaymentService(provider)

	out, err := svc.Initialize(context.Background(), InitializePaymentInput{
		TenantSlug: "sunrise", Provider: domain.ProviderPaystack, Amount: 100,
	})
	require.NoError(t, err)

	target := svc.CallbackRedirect(context.Background(), out.Reference)
	require.Equal(t, "/payments/success?reference="+out.Reference, target)

	target = svc.CallbackRedirect(context.Background(), "missing")
	require.Equal(t, "/payments/failure?reference=missing", target)
}
