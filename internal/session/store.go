package session

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store tracks active platform sessions by jti so tokens can be revoked before expiry.
type Store interface {
	// Put records the session as active until the TTL elapses.
	Put(ctx context.Context, jti, providerSessionID string, ttl time.Duration) error
	// Active reports whether the session is known and unrevoked.
	Active(ctx context.Context, jti string) (bool, error)
	// Delete revokes the session. Unknown jtis are a no-op.
	Delete(ctx context.Context, jti string) error
}

const keyPrefix = "session:"

// RedisStore keeps active sessions in Redis with per-key TTLs, so revocation
// is shared across server instances.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore returns a Store backed by the given Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, jti, providerSessionID string, ttl time.Duration) error {
	return s.client.Set(ctx, keyPrefix+jti, providerSessionID, ttl).Err()
}

func (s *RedisStore) Active(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) Delete(ctx context.Context, jti string) error {
	return s.client.Del(ctx, keyPrefix+jti).Err()
}

type memoryEntry struct {
	providerSessionID string
	expiresAt         time.Time
}

// MemoryStore is an in-process Store for single-instance deployments and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	m    map[string]memoryEntry
	nowF func() time.Time
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]memoryEntry), nowF: time.Now}
}

func (s *MemoryStore) Put(ctx context.Context, jti, providerSessionID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[jti] = memoryEntry{providerSessionID: providerSessionID, expiresAt: s.nowF().Add(ttl)}
	return nil
}

func (s *MemoryStore) Active(ctx context.Context, jti string) (bool, error) {
	s.mu.RLock()
	e, ok := s.m[jti]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !e.expiresAt.After(s.nowF()) {
		s.mu.Lock()
		delete(s.m, jti)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, jti)
	return nil
}
