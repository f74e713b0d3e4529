package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/coop-gateway/internal/config"
	"github.com/spec-kit/coop-gateway/internal/domain"
	apperrors "github.com/spec-kit/coop-gateway/pkg/util"
)

// Stripe drives a hosted Checkout Session. Amounts are sent in cents and the
// request body is form-encoded, per the Stripe API.
type Stripe struct {
	baseURL string
	secret  string
	http    *http.Client
}

// NewStripe constructs the adapter.
func NewStripe(cfg config.StripeConfig) *Stripe {
	return &Stripe{
		baseURL: cfg.BaseURL,
		secret:  cfg.SecretKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Name implements Provider.
func (s *Stripe) Name() domain.PaymentProviderName {
	return domain.ProviderStripe
}

type stripeSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentStatus string `json:"payment_status"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`
	Error         *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Initialize implements Provider.
func (s *Stripe) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("customer_email", req.Email)
	form.Set("client_reference_id", req.Reference)
	form.Set("success_url", req.CallbackURL)
	form.Set("cancel_url", req.CallbackURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(req.Currency))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(MinorUnits(req.Amount), 10))
	form.Set("line_items[0][price_data][product_data][name]", "Cooperative payment "+req.Reference)

	session, err := s.call(ctx, http.MethodPost, "/v1/checkout/sessions", form)
	if err != nil {
		return nil, err
	}
	return &InitializeResult{
		ProviderReference: session.ID,
		AuthorizationURL:  session.URL,
	}, nil
}

// Verify implements Provider.
func (s *Stripe) Verify(ctx context.Context, providerRef string) (*VerifyResult, error) {
	session, err := s.call(ctx, http.MethodGet, "/v1/checkout/sessions/"+providerRef, nil)
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{AmountMinor: session.AmountTotal, Currency: strings.ToUpper(session.Currency)}
	if session.PaymentStatus == "paid" {
		result.Status = domain.TransactionSuccess
	} else {
		result.Status = domain.TransactionFailed
		result.FailureReason = "payment status " + session.PaymentStatus
	}
	return result, nil
}

func (s *Stripe) call(ctx context.Context, method, path string, form url.Values) (*stripeSession, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.secret)
	httpReq.Header.Set("Accept", "application/json")
	if form != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.http.Do(httpReq)
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailable(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailable(err)
	}

	var session stripeSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, apperrors.NewUpstreamUnavailable(err)
	}
	if resp.StatusCode >= 400 {
		message := "stripe request failed"
		if session.Error != nil {
			message = fmt.Sprintf("stripe: %s", session.Error.Message)
		}
		return nil, apperrors.NewUpstreamError(resp.StatusCode, message, nil)
	}
	return &session, nil
}
