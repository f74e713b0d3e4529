package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/coop-gateway/internal/domain"
)

// ErrCacheMiss is returned when no cached tenant exists for a key.
var ErrCacheMiss = errors.New("tenant cache miss")

// Cache stores resolved tenants keyed by slug or host.
type Cache interface {
	Get(ctx context.Context, key string) (*domain.Tenant, error)
	Set(ctx context.Context, key string, tenant *domain.Tenant) error
	Delete(ctx context.Context, key string) error
}

const redisKeyPrefix = "tenant:"

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache returns a Redis-backed tenant cache with the given TTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) Cache {
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, key string) (*domain.Tenant, error) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var tenant domain.Tenant
	if err := json.Unmarshal(raw, &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (c *redisCache) Set(ctx context.Context, key string, tenant *domain.Tenant) error {
	raw, err := json.Marshal(tenant)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, redisKeyPrefix+key, raw, c.ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, redisKeyPrefix+key).Err()
}

type memoryCache struct {
	mu      sync.RWMutex
	tenants map[string]*domain.Tenant
}

// NewMemoryCache returns an in-memory cache used in tests and when Redis is
// unavailable. Entries never expire; Delete is the only invalidation.
func NewMemoryCache() Cache {
	return &memoryCache{tenants: make(map[string]*domain.Tenant)}
}

func (c *memoryCache) Get(_ context.Context, key string) (*domain.Tenant, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if tenant, ok := c.tenants[key]; ok {
		return tenant, nil
	}
	return nil, ErrCacheMiss
}

func (c *memoryCache) Set(_ context.Context, key string, tenant *domain.Tenant) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tenants[key] = tenant
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tenants, key)
	return nil
}
