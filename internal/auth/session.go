package auth

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/coop-gateway/internal/domain"
)

// ErrSessionNotFound is returned when no session exists for an ID.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists auth sessions keyed by opaque session ID. This is the
// server-side replacement for token storage in the browser: the bearer token
// and tenant slug live here and are attached to outgoing upstream calls.
type SessionStore interface {
	Create(ctx context.Context, session *domain.AuthSession) error
	Get(ctx context.Context, id string) (*domain.AuthSession, error)
	Delete(ctx context.Context, id string) error
}

const sessionKeyPrefix = "session:"

type redisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore returns a Redis-backed session store.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) SessionStore {
	return &redisSessionStore{client: client, ttl: ttl}
}

func (s *redisSessionStore) Create(ctx context.Context, session *domain.AuthSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+session.ID, raw, s.ttl).Err()
}

func (s *redisSessionStore) Get(ctx context.Context, id string) (*domain.AuthSession, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var session domain.AuthSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKeyPrefix+id).Err()
}

type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.AuthSession
}

// NewMemorySessionStore returns an in-memory store used in tests.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{sessions: make(map[string]*domain.AuthSession)}
}

func (s *memorySessionStore) Create(_ context.Context, session *domain.AuthSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *memorySessionStore) Get(_ context.Context, id string) (*domain.AuthSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if session, ok := s.sessions[id]; ok {
		return session, nil
	}
	return nil, ErrSessionNotFound
}

func (s *memorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
