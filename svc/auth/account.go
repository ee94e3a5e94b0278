package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hyrelab/authguard/pkg/lockout"
)

// Account carries the credential-relevant fields of an account. Invariants:
// TwoFactorSecret is present if and only if TwoFactorEnabled; RecoveryCodes
// are meaningful only while two-factor is enabled and are cleared when it is
// disabled; a non-zero Lockout.LockedUntil implies the failure counter
// reached the threshold when it was set.
type Account struct {
	ID               uuid.UUID
	Email            string
	PasswordDigest   string
	TwoFactorEnabled bool
	TwoFactorSecret  string   // base32 text, present iff TwoFactorEnabled
	RecoveryCodes    []string // unused single-use backup codes, ordered
	Lockout          lockout.State
	LastLoginAt      time.Time // audit only, never consulted for logic
	LastLoginIP      string    // audit only
}

// CredentialStore is the persistence capability the service depends on. The
// service never caches accounts across requests; every operation re-reads
// through the store.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// UpdateLockout applies the transition atomically with respect to
	// concurrent attempts against the same account: two simultaneous failures
	// must not both read the same counter and under-count. Implementations
	// use a row lock, atomic increment, or optimistic retry.
	UpdateLockout(ctx context.Context, id uuid.UUID, apply func(lockout.State) lockout.State) (lockout.State, error)

	UpdatePassword(ctx context.Context, id uuid.UUID, passwordDigest string) error
	// UpdateTwoFactor persists the enabled flag, secret, and recovery codes
	// together so the secret-iff-enabled invariant cannot be observed broken.
	UpdateTwoFactor(ctx context.Context, id uuid.UUID, enabled bool, secret string, recoveryCodes []string) error
	UpdateRecoveryCodes(ctx context.Context, id uuid.UUID, codes []string) error
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time, ip string) error
}

// PasswordHasher is the external one-way hash collaborator. This service
// never chooses the algorithm; it only consumes digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(digest, plaintext string) bool
	// DummyDigest returns a valid digest matching no password, burned on
	// unknown-email attempts to keep their timing comparable.
	DummyDigest() string
}
