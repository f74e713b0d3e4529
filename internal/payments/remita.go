package payments

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/spec-kit/coop-gateway/internal/config"
	"github.com/spec-kit/coop-gateway/internal/domain"
	apperrors "github.com/spec-kit/coop-gateway/pkg/util"
)

// Remita generates a Remita Retrieval Reference (RRR) and checks its payment
// status. Requests are authenticated with a SHA-512 hash over merchant
// credentials, per the Remita API.
type Remita struct {
	baseURL       string
	merchantID    string
	serviceTypeID string
	apiKey        string
	http          *http.Client
}

// NewRemita constructs the adapter.
func NewRemita(cfg config.RemitaConfig) *Remita {
	return &Remita{
		baseURL:       cfg.BaseURL,
		merchantID:    cfg.MerchantID,
		serviceTypeID: cfg.ServiceTypeID,
		apiKey:        cfg.APIKey,
		http:          &http.Client{Timeout: 30 * time.Second},
	}
}

// Name implements Provider.
func (r *Remita) Name() domain.PaymentProviderName {
	return domain.ProviderRemita
}

type remitaInitResponse struct {
	StatusCode string `json:"statuscode"`
	Status     string `json:"status"`
	RRR        string `json:"RRR"`
}

type remitaStatusResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Amount  float64 `json:"amount"`
}

// Initialize implements Provider.
func (r *Remita) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	amount := strconv.FormatFloat(req.Amount, 'f', 2, 64)
	payload := map[string]any{
		"serviceTypeId": r.serviceTypeID,
		"amount":        amount,
		"orderId":       req.Reference,
		"payerName":     req.Email,
		"payerEmail":    req.Email,
		"description":   "Cooperative payment " + req.Reference,
	}

	hash := r.sha512Hex(r.merchantID + r.serviceTypeID + req.Reference + amount + r.apiKey)
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/merchant/api/paymentinit", bytes.NewReader(encoded))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("remitaConsumerKey=%s,remitaConsumerToken=%s", r.merchantID, hash))

	var initResp remitaInitResponse
	if err := r.do(httpReq, &initResp); err != nil {
		return nil, err
	}
	if initResp.StatusCode != "025" {
		return nil, apperrors.NewUpstreamError(http.StatusBadGateway, fmt.Sprintf("remita: %s", initResp.Status), nil)
	}

	return &InitializeResult{
		ProviderReference: initResp.RRR,
		AuthorizationURL:  fmt.Sprintf("%s/finalize.reg?rrr=%s", r.baseURL, initResp.RRR),
	}, nil
}

// Verify implements Provider.
func (r *Remita) Verify(ctx context.Context, providerRef string) (*VerifyResult, error) {
	hash := r.sha512Hex(providerRef + r.apiKey + r.merchantID)
	path := fmt.Sprintf("/%s/%s/%s/status.reg", r.merchantID, providerRef, hash)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, nil)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	httpReq.Header.Set("Accept", "application/json")

	var statusResp remitaStatusResponse
	if err := r.do(httpReq, &statusResp); err != nil {
		return nil, err
	}

	result := &VerifyResult{AmountMinor: MinorUnits(statusResp.Amount), Currency: "NGN"}
	// "00" and "01" are Remita's settled/approved status codes.
	if statusResp.Status == "00" || statusResp.Status == "01" {
		result.Status = domain.TransactionSuccess
	} else {
		result.Status = domain.TransactionFailed
		result.FailureReason = statusResp.Message
	}
	return result, nil
}

func (r *Remita) do(httpReq *http.Request, out any) error {
	resp, err := r.http.Do(httpReq)
	if err != nil {
		return apperrors.NewUpstreamUnavailable(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewUpstreamUnavailable(err)
	}
	if resp.StatusCode >= 400 {
		return apperrors.NewUpstreamError(resp.StatusCode, "remita request failed", nil)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.NewUpstreamUnavailable(err)
	}
	return nil
}

func (r *Remita) sha512Hex(input string) string {
	sum := sha512.Sum512([]byte(input))
	return hex.EncodeToString(sum[:])
}
