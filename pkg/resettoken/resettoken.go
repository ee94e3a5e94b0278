// Package resettoken issues and validates opaque, time-limited password-reset
// tokens. A token authorizes exactly one password change: consumption is
// atomic in the backing Store, so a value can never be redeemed twice, and
// expiry is checked lazily at consumption time with no background sweep.
//
// Token values are 32 random bytes in unpadded base64url. They are secret
// material and must never be logged or placed in audit metadata.
package resettoken

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTTL is the token lifetime applied when none is configured.
	DefaultTTL = time.Hour

	// tokenLength is the number of random bytes per token value.
	tokenLength = 32
)

// Token is a single-use password-reset credential bound to an account.
type Token struct {
	Value     string    `json:"-"` // opaque secret, excluded from serialization by default
	AccountID uuid.UUID `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists tokens. Consume must atomically remove and return the token
// so that two concurrent resets cannot both redeem the same value.
type Store interface {
	Save(ctx context.Context, token Token) error
	// Consume removes the token and returns it, or ErrTokenNotFound when the
	// value is unknown or already consumed.
	Consume(ctx context.Context, value string) (Token, error)
}

// Service issues and redeems reset tokens against a Store.
type Service struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
	rand  io.Reader
}

// Option configures a Service.
type Option func(*Service)

// WithTTL overrides the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source for deterministic expiry in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRand overrides the random source for token values.
func WithRand(r io.Reader) Option {
	return func(s *Service) {
		if r != nil {
			s.rand = r
		}
	}
}

// New creates a Service with a one-hour TTL, the system clock, and
// crypto/rand.
func New(store Store, opts ...Option) *Service {
	if store == nil {
		panic("resettoken: store cannot be nil")
	}

	s := &Service{
		store: store,
		ttl:   DefaultTTL,
		now:   time.Now,
		rand:  rand.Reader,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates and persists a fresh token for the account.
func (s *Service) Issue(ctx context.Context, accountID uuid.UUID) (Token, error) {
	buf := make([]byte, tokenLength)
	if _, err := io.ReadFull(s.rand, buf); err != nil {
		return Token{}, errors.Join(ErrFailedToGenerateToken, err)
	}

	now := s.now()
	token := Token{
		Value:     base64.RawURLEncoding.EncodeToString(buf),
		AccountID: accountID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	if err := s.store.Save(ctx, token); err != nil {
		return Token{}, err
	}
	return token, nil
}

// Consume redeems a token value exactly once. Unknown and already-consumed
// values return ErrTokenInvalid; a known but stale value returns
// ErrTokenExpired. An expired token is still removed from the store.
func (s *Service) Consume(ctx context.Context, value string) (Token, error) {
	if value == "" {
		return Token{}, ErrTokenInvalid
	}

	token, err := s.store.Consume(ctx, value)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return Token{}, ErrTokenInvalid
		}
		return Token{}, err
	}

	if !token.ExpiresAt.After(s.now()) {
		return Token{}, ErrTokenExpired
	}
	return token, nil
}
