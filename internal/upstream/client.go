package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/coop-gateway/internal/config"
	"github.com/spec-kit/coop-gateway/internal/observability"
	apperrors "github.com/spec-kit/coop-gateway/pkg/util"
)

// ForwardHeaders are the inbound headers relayed to the upstream backend.
type ForwardHeaders struct {
	Authorization string
	ForwardedHost string
	TenantSlug    string
}

// Request describes a single outbound call.
type Request struct {
	Method  string
	Path    string // upstream path, leading slash required
	Query   string // raw query string forwarded verbatim
	Headers ForwardHeaders
	Body    []byte
}

// Response carries the upstream status and raw JSON body.
type Response struct {
	Status int
	Body   []byte
}

// OK reports whether the upstream answered with a 2xx status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Client is the single outbound HTTP client for the upstream backend. It is
// constructed once from config and injected; there is no module-level state.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewClient builds a client from the upstream configuration.
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout()},
		logger:  logger,
		metrics: metrics,
	}
}

// Do forwards a request to the upstream backend and returns its raw response.
// A missing base URL short-circuits before any dial. Network failures are
// logged and converted to a generic error; the caller never sees raw
// transport errors.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c.baseURL == "" {
		return nil, apperrors.NewConfigError("upstream base URL not configured")
	}

	url := c.baseURL + req.Path
	if req.Query != "" {
		url += "?" + req.Query
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, body)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if len(req.Body) > 0 {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Headers.Authorization != "" {
		httpReq.Header.Set("Authorization", req.Headers.Authorization)
	}
	if req.Headers.ForwardedHost != "" {
		httpReq.Header.Set("X-Forwarded-Host", req.Headers.ForwardedHost)
	}
	if req.Headers.TenantSlug != "" {
		httpReq.Header.Set("X-Tenant-Slug", req.Headers.TenantSlug)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Error("upstream request failed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Error(err),
		)
		c.metrics.RecordUpstream(req.Path, 0)
		return nil, apperrors.NewUpstreamUnavailable(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("upstream body read failed", zap.String("path", req.Path), zap.Error(err))
		return nil, apperrors.NewUpstreamUnavailable(err)
	}

	c.metrics.RecordUpstream(req.Path, resp.StatusCode)
	return &Response{Status: resp.StatusCode, Body: raw}, nil
}

// DoJSON issues a call with an optional JSON payload and decodes a 2xx body
// into out. Non-2xx responses become upstream errors carrying the parsed body.
func (c *Client) DoJSON(ctx context.Context, method, path string, headers ForwardHeaders, payload, out any) error {
	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		body = encoded
	}

	resp, err := c.Do(ctx, Request{Method: method, Path: path, Headers: headers, Body: body})
	if err != nil {
		return err
	}
	if !resp.OK() {
		return ErrorFromResponse(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		c.logger.Error("upstream returned malformed JSON", zap.String("path", path), zap.Error(err))
		return apperrors.NewUpstreamUnavailable(err)
	}
	return nil
}

// ErrorFromResponse maps a non-2xx upstream response to a DomainError with the
// same status code, embedding the parsed JSON error body when possible.
func ErrorFromResponse(resp *Response) error {
	message := ""
	var parsed map[string]any
	if err := json.Unmarshal(resp.Body, &parsed); err == nil {
		if m, ok := parsed["message"].(string); ok && m != "" {
			message = m
		} else if m, ok := parsed["error"].(string); ok && m != "" {
			message = m
		}
		return apperrors.NewUpstreamError(resp.Status, message, parsed)
	}
	return apperrors.NewUpstreamError(resp.Status, message, nil)
}
