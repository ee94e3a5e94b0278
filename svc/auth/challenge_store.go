package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChallengeStore holds the server-side markers for issued two-factor
// challenges. Login registers a marker when it hands out a challenge token;
// the first VerifyTwoFactor attempt that presents the token consumes it, so
// one challenge authorizes exactly one verification attempt.
type ChallengeStore interface {
	// Save registers a challenge marker that expires after ttl.
	Save(ctx context.Context, nonce string, ttl time.Duration) error
	// Consume atomically removes the marker and reports whether it was
	// present and unexpired.
	Consume(ctx context.Context, nonce string) (bool, error)
}

// MemoryChallengeStore keeps markers in process memory, for tests and
// single-instance deployments.
type MemoryChallengeStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// MemoryChallengeOption configures a MemoryChallengeStore.
type MemoryChallengeOption func(*MemoryChallengeStore)

// WithChallengeClock overrides the expiry clock for deterministic tests.
func WithChallengeClock(now func() time.Time) MemoryChallengeOption {
	return func(m *MemoryChallengeStore) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemoryChallengeStore creates an empty in-memory store.
func NewMemoryChallengeStore(opts ...MemoryChallengeOption) *MemoryChallengeStore {
	m := &MemoryChallengeStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Save registers the marker and sweeps expired entries while holding the
// lock, so abandoned challenges do not accumulate.
func (m *MemoryChallengeStore) Save(ctx context.Context, nonce string, ttl time.Duration) error {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	for k, expiresAt := range m.entries {
		if !expiresAt.After(now) {
			delete(m.entries, k)
		}
	}
	m.entries[nonce] = now.Add(ttl)
	return nil
}

// Consume removes the marker if present, reporting whether it was still live.
func (m *MemoryChallengeStore) Consume(ctx context.Context, nonce string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt, ok := m.entries[nonce]
	if !ok {
		return false, nil
	}
	delete(m.entries, nonce)
	return expiresAt.After(m.now()), nil
}

const redisChallengeKeyPrefix = "authchallenge:"

// RedisChallengeStore keeps markers in Redis, for multi-instance deployments.
// GETDEL makes consumption atomic across instances and Redis expiry handles
// abandoned challenges.
type RedisChallengeStore struct {
	client redis.UniversalClient
}

// NewRedisChallengeStore creates a Redis-backed challenge store.
func NewRedisChallengeStore(client redis.UniversalClient) *RedisChallengeStore {
	if client == nil {
		panic("auth: redis client cannot be nil")
	}
	return &RedisChallengeStore{client: client}
}

// Save registers the marker with the given TTL.
func (r *RedisChallengeStore) Save(ctx context.Context, nonce string, ttl time.Duration) error {
	return r.client.Set(ctx, redisChallengeKeyPrefix+nonce, 1, ttl).Err()
}

// Consume atomically fetches and deletes the marker via GETDEL.
func (r *RedisChallengeStore) Consume(ctx context.Context, nonce string) (bool, error) {
	if err := r.client.GetDel(ctx, redisChallengeKeyPrefix+nonce).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
