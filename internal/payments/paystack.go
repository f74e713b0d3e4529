package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spec-kit/coop-gateway/internal/config"
	"github.com/spec-kit/coop-gateway/internal/domain"
	apperrors "github.com/spec-kit/coop-gateway/pkg/util"
)

// Paystack calls the Paystack transaction API. Amounts are sent in kobo.
type Paystack struct {
	baseURL string
	secret  string
	http    *http.Client
}

// NewPaystack constructs the adapter.
func NewPaystack(cfg config.PaystackConfig) *Paystack {
	return &Paystack{
		baseURL: cfg.BaseURL,
		secret:  cfg.SecretKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Name implements Provider.
func (p *Paystack) Name() domain.PaymentProviderName {
	return domain.ProviderPaystack
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type paystackInitData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type paystackVerifyData struct {
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Message  string `json:"gateway_response"`
}

// Initialize implements Provider.
func (p *Paystack) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	payload := map[string]any{
		"email":        req.Email,
		"amount":       MinorUnits(req.Amount),
		"currency":     req.Currency,
		"reference":    req.Reference,
		"callback_url": req.CallbackURL,
	}

	envelope, err := p.call(ctx, http.MethodPost, "/transaction/initialize", payload)
	if err != nil {
		return nil, err
	}

	var data paystackInitData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, apperrors.NewUpstreamUnavailable(err)
	}
	return &InitializeResult{
		ProviderReference: data.Reference,
		AuthorizationURL:  data.AuthorizationURL,
	}, nil
}

// Verify implements Provider.
func (p *Paystack) Verify(ctx context.Context, providerRef string) (*VerifyResult, error) {
	envelope, err := p.call(ctx, http.MethodGet, "/transaction/verify/"+providerRef, nil)
	if err != nil {
		return nil, err
	}

	var data paystackVerifyData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, apperrors.NewUpstreamUnavailable(err)
	}

	result := &VerifyResult{AmountMinor: data.Amount, Currency: data.Currency}
	if data.Status == "success" {
		result.Status = domain.TransactionSuccess
	} else {
		result.Status = domain.TransactionFailed
		result.FailureReason = data.Message
	}
	return result, nil
}

func (p *Paystack) call(ctx context.Context, method, path string, payload any) (*paystackEnvelope, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.secret)
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.http.Do(httpReq)
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailable(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailable(err)
	}

	var envelope paystackEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, apperrors.NewUpstreamUnavailable(err)
	}
	if resp.StatusCode >= 400 || !envelope.Status {
		status := resp.StatusCode
		if status < 400 {
			status = http.StatusBadGateway
		}
		return nil, apperrors.NewUpstreamError(status, fmt.Sprintf("paystack: %s", envelope.Message), nil)
	}
	return &envelope, nil
}
