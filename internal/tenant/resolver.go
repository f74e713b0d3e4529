package tenant

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/coop-gateway/internal/domain"
	"github.com/spec-kit/coop-gateway/internal/upstream"
)

const (
	localsTenantKey = "tenant"
	localsSlugKey   = "tenant_slug"

	// SlugHeader disambiguates the tenant when the host alone is not enough.
	SlugHeader = "X-Tenant-Slug"

	resolvePath = "/tenants/resolve"
)

// Resolver determines which cooperative business an inbound request belongs
// to, using the explicit slug header when present and the request host
// otherwise. Successful lookups are cached; a lookup failure invalidates the
// cached entry and is returned as-is — there is no automatic retry.
type Resolver struct {
	client *upstream.Client
	cache  Cache
	logger *zap.Logger
}

// NewResolver constructs a resolver.
func NewResolver(client *upstream.Client, cache Cache, logger *zap.Logger) *Resolver {
	return &Resolver{client: client, cache: cache, logger: logger}
}

// Resolve returns the tenant for the given host and optional slug.
func (r *Resolver) Resolve(ctx context.Context, host, slug string) (*domain.Tenant, error) {
	key := slug
	if key == "" {
		key = host
	}

	if tenant, err := r.cache.Get(ctx, key); err == nil {
		return tenant, nil
	}

	headers := upstream.ForwardHeaders{ForwardedHost: host, TenantSlug: slug}
	var tenant domain.Tenant
	if err := r.client.DoJSON(ctx, http.MethodGet, resolvePath, headers, nil, &tenant); err != nil {
		if cacheErr := r.cache.Delete(ctx, key); cacheErr != nil {
			r.logger.Warn("tenant cache invalidation failed", zap.String("key", key), zap.Error(cacheErr))
		}
		return nil, err
	}

	if err := r.cache.Set(ctx, key, &tenant); err != nil {
		r.logger.Warn("tenant cache write failed", zap.String("key", key), zap.Error(err))
	}
	return &tenant, nil
}

// Invalidate drops the cached tenant for a key.
func (r *Resolver) Invalidate(ctx context.Context, key string) error {
	return r.cache.Delete(ctx, key)
}

// Middleware resolves the tenant for each request and stores it in locals.
// Resolution failure is not fatal here; guarded routes that need a tenant
// fail closed further down the chain.
func Middleware(resolver *Resolver, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := c.Get(SlugHeader)
		tenant, err := resolver.Resolve(c.UserContext(), c.Hostname(), slug)
		if err != nil {
			logger.Warn("tenant resolution failed",
				zap.String("host", c.Hostname()),
				zap.String("slug", slug),
				zap.Error(err),
			)
			return c.Next()
		}
		c.Locals(localsTenantKey, tenant)
		c.Locals(localsSlugKey, tenant.Slug)
		return c.Next()
	}
}

// FromContext returns the tenant resolved for this request, if any.
func FromContext(c *fiber.Ctx) (*domain.Tenant, bool) {
	val := c.Locals(localsTenantKey)
	if val == nil {
		return nil, false
	}
	tenant, ok := val.(*domain.Tenant)
	return tenant, ok
}

// SlugFromContext returns the resolved tenant slug, falling back to the
// inbound header when resolution did not run or failed.
func SlugFromContext(c *fiber.Ctx) string {
	if val := c.Locals(localsSlugKey); val != nil {
		if slug, ok := val.(string); ok && slug != "" {
			return slug
		}
	}
	return c.Get(SlugHeader)
}
