package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/coop-gateway/internal/config"
	apperrors "github.com/spec-kit/coop-gateway/pkg/util"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.UpstreamConfig{BaseURL: baseURL, TimeoutSeconds: 5}, zap.NewNop(), nil)
}

func TestDoForwardsHeadersAndBody(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"x":1}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/contributions",
		Query:  "page=2",
		Headers: ForwardHeaders{
			Authorization: "Bearer abc",
			ForwardedHost: "coop.example.com",
			TenantSlug:    "sunrise",
		},
	})
	require.NoError(t, err)
	require.True(t, resp.OK())
	require.Equal(t, http.StatusOK, resp.Status)
	require.JSONEq(t, `{"x":1}`, string(resp.Body))

	require.Equal(t, "/contributions", got.URL.Path)
	require.Equal(t, "page=2", got.URL.RawQuery)
	require.Equal(t, "Bearer abc", got.Header.Get("Authorization"))
	require.Equal(t, "coop.example.com", got.Header.Get("X-Forwarded-Host"))
	require.Equal(t, "sunrise", got.Header.Get("X-Tenant-Slug"))
	require.Equal(t, "application/json", got.Header.Get("Accept"))
}

func TestDoMissingBaseURL(t *testing.T) {
	client := newTestClient("")

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/loans"})
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, "CONFIG", domainErr.Code)
	require.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
}

func TestDoNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL)
	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/loans"})
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, "UPSTREAM_UNAVAILABLE", domainErr.Code)
	require.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
	// the raw transport error stays server-side
	require.Equal(t, "upstream service unavailable", domainErr.Message)
}

func TestErrorFromResponseKeepsStatusAndMessage(t *testing.T) {
	err := ErrorFromResponse(&Response{
		Status: http.StatusUnprocessableEntity,
		Body:   []byte(`{"message":"bad","field":"email"}`),
	})

	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, "UPSTREAM_ERROR", domainErr.Code)
	require.Equal(t, http.StatusUnprocessableEntity, domainErr.HTTPStatus)
	require.Equal(t, "bad", domainErr.Message)
	require.Equal(t, "email", domainErr.Details["field"])
}

func TestErrorFromResponseNonJSONBody(t *testing.T) {
	err := ErrorFromResponse(&Response{Status: http.StatusBadGateway, Body: []byte("<html>oops</html>")})

	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, "UPSTREAM_ERROR", domainErr.Code)
	require.Equal(t, http.StatusBadGateway, domainErr.HTTPStatus)
	require.Equal(t, "upstream request failed", domainErr.Message)
	require.Nil(t, domainErr.Details)
}

func TestDoJSONDecodesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"t-1","slug":"sunrise"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	var out struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	}
	err := client.DoJSON(context.Background(), http.MethodPost, "/tenants", ForwardHeaders{}, map[string]string{"slug": "sunrise"}, &out)
	require.NoError(t, err)
	require.Equal(t, "t-1", out.ID)
	require.Equal(t, "sunrise", out.Slug)
}
