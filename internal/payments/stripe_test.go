package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/coop-gateway/internal/config"
	"github.com/spec-kit/coop-gateway/internal/domain"
	apperrors "github.com/spec-kit/coop-gateway/pkg/util"
)

func TestStripeInitializeCreatesCheckoutSession(t *testing.T) {
	var form map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.Equal(t, "Bearer sk_test_456", r.Header.Get("Authorization"))
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		_, _ = w.Write([]byte(`{"id": "cs_123", "url": "https://checkout.stripe.com/pay/cs_123"}`))
	}))
	defer server.Close()

	provider := NewStripe(config.StripeConfig{BaseURL: server.URL, SecretKey: "sk_test_456"})
	result, err := provider.Initialize(context.Background(), InitializeRequest{
		Reference:   "ref-2",
		Amount:      42.99,
		Currency:    "USD",
		Email:       "member@example.com",
		CallbackURL: "https://gw.example.com/api/payments/callback",
	})
	require.NoError(t, err)
	require.Equal(t, "cs_123", result.ProviderReference)
	require.Equal(t, "https://checkout.stripe.com/pay/cs_123", result.AuthorizationURL)

	require.Equal(t, "payment", form["mode"][0])
	require.Equal(t, "ref-2", form["client_reference_id"][0])
	require.Equal(t, "usd", form["line_items[0][price_data][currency]"][0])
	// 42.99 USD is 4299 cents
	require.Equal(t, "4299", form["line_items[0][price_data][unit_amount]"][0])
}

func TestStripeInitializeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Invalid API Key"}}`))
	}))
	defer server.Close()

	provider := NewStripe(config.StripeConfig{BaseURL: server.URL, SecretKey: "bad"})
	_, err := provider.Initialize(context.Background(), InitializeRequest{Reference: "ref-2", Amount: 10, Currency: "USD"})
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, http.StatusUnauthorized, domainErr.HTTPStatus)
	require.Contains(t, domainErr.Message, "Invalid API Key")
}

func TestStripeVerifyMapsPaymentStatus(t *testing.T) {
	cases := []struct {
		paymentStatus string
		want          domain.TransactionStatus
	}{
		{"paid", domain.TransactionSuccess},
		{"unpaid", domain.TransactionFailed},
	}

	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/checkout/sessions/cs_123", r.URL.Path)
			_, _ = w.Write([]byte(`{"id": "cs_123", "payment_status": "` + tc.paymentStatus + `", "amount_total": 4299, "currency": "usd"}`))
		}))

		provider := NewStripe(config.StripeConfig{BaseURL: server.URL, SecretKey: "sk_test_456"})
		result, err := provider.Verify(context.Background(), "cs_123")
		server.Close()

		require.NoError(t, err)
		require.Equal(t, tc.want, result.Status)
		require.Equal(t, int64(4299), result.AmountMinor)
		require.Equal(t, "USD", result.Currency)
	}
}
