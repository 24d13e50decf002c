package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore tracks which token ids (jti) are still live. The identity
// service creates entries at login and deletes them at logout, so a
// verified JWT whose session is gone is treated as revoked.
type SessionStore interface {
	// Active reports whether the session for the given token id exists.
	Active(ctx context.Context, tokenID string) (bool, error)
}

const sessionKeyPrefix = "session:"

// RedisSessionStore checks sessions against Redis.
type RedisSessionStore struct {
	Client *redis.Client
}

// NewRedisSessionStore creates a session store on the given Redis options.
func NewRedisSessionStore(opt *redis.Options) *RedisSessionStore {
	return &RedisSessionStore{Client: redis.NewClient(opt)}
}

var _ SessionStore = (*RedisSessionStore)(nil)

// Active reports whether the session key for the token id exists.
func (s *RedisSessionStore) Active(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.Client.Exists(ctx, sessionKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemorySessionStore is an in-memory SessionStore for tests and
// single-process deployments without Redis.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]time.Time // token id -> expiry, zero means no expiry
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]time.Time)}
}

var _ SessionStore = (*MemorySessionStore)(nil)

// Put registers a session for the token id.
func (s *MemorySessionStore) Put(tokenID string, expiry time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[tokenID] = expiry
}

// Revoke removes the session for the token id.
func (s *MemorySessionStore) Revoke(tokenID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tokenID)
}

// Active reports whether a non-expired session exists for the token id.
func (s *MemorySessionStore) Active(_ context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expiry, ok := s.sessions[tokenID]
	if !ok {
		return false, nil
	}
	if !expiry.IsZero() && time.Now().After(expiry) {
		return false, nil
	}
	return true, nil
}
