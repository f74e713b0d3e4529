package tenant

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/coop-gateway/internal/config"
	"github.com/spec-kit/coop-gateway/internal/upstream"
)

func newResolverWithBackend(handler http.HandlerFunc) (*Resolver, *httptest.Server, Cache) {
	server := httptest.NewServer(handler)
	client := upstream.NewClient(config.UpstreamConfig{BaseURL: server.URL, TimeoutSeconds: 5}, zap.NewNop(), nil)
	cache := NewMemoryCache()
	return NewResolver(client, cache, zap.NewNop()), server, cache
}

func TestResolveCachesSuccessfulLookup(t *testing.T) {
	hits := 0
	resolver, server, _ := newResolverWithBackend(func(w http.ResponseWriter, r *http.Request) {
		hits++
		require.Equal(t, "/tenants/resolve", r.URL.Path)
		require.Equal(t, "coop.example.com", r.Header.Get("X-Forwarded-Host"))
		_, _ = w.Write([]byte(`{"id":"t-1","slug":"sunrise","name":"Sunrise Cooperative","status":"ACTIVE"}`))
	})
	defer server.Close()

	ctx := context.Background()
	first, err := resolver.Resolve(ctx, "coop.example.com", "")
	require.NoError(t, err)
	require.Equal(t, "sunrise", first.Slug)

	second, err := resolver.Resolve(ctx, "coop.example.com", "")
	require.NoError(t, err)
	require.Equal(t, first.Slug, second.Slug)
	require.Equal(t, 1, hits)
}

func TestResolvePrefersSlugOverHost(t *testing.T) {
	resolver, server, cache := newResolverWithBackend(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "meadow", r.Header.Get("X-Tenant-Slug"))
		_, _ = w.Write([]byte(`{"id":"t-2","slug":"meadow","name":"Meadow Cooperative","status":"ACTIVE"}`))
	})
	defer server.Close()

	ctx := context.Background()
	tenant, err := resolver.Resolve(ctx, "coop.example.com", "meadow")
	require.NoError(t, err)
	require.Equal(t, "meadow", tenant.Slug)

	// cached under the slug, not the host
	cached, err := cache.Get(ctx, "meadow")
	require.NoError(t, err)
	require.Equal(t, "meadow", cached.Slug)
	_, err = cache.Get(ctx, "coop.example.com")
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestResolveFailureInvalidatesCache(t *testing.T) {
	fail := false
	resolver, server, cache := newResolverWithBackend(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"unknown tenant"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"t-1","slug":"sunrise","name":"Sunrise Cooperative","status":"ACTIVE"}`))
	})
	defer server.Close()

	ctx := context.Background()
	_, err := resolver.Resolve(ctx, "coop.example.com", "")
	require.NoError(t, err)

	require.NoError(t, resolver.Invalidate(ctx, "coop.example.com"))

	fail = true
	_, err = resolver.Resolve(ctx, "coop.example.com", "")
	require.Error(t, err)

	_, err = cache.Get(ctx, "coop.example.com")
	require.ErrorIs(t, err, ErrCacheMiss)
}
