package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hyrelab/authguard/pkg/lockout"
)

// MemoryStore is an in-memory CredentialStore for tests and prototypes. All
// operations run under one mutex, which trivially satisfies the atomic
// counter-update requirement.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*Account
	byEmail  map[string]uuid.UUID
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[uuid.UUID]*Account),
		byEmail:  make(map[string]uuid.UUID),
	}
}

// Put inserts or replaces an account.
func (m *MemoryStore) Put(account Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = &account
	m.byEmail[normalizeEmail(account.Email)] = account.ID
}

func (m *MemoryStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return m.copyOf(id)
}

func (m *MemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyOf(id)
}

func (m *MemoryStore) UpdateLockout(ctx context.Context, id uuid.UUID, apply func(lockout.State) lockout.State) (lockout.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok {
		return lockout.State{}, ErrAccountNotFound
	}
	account.Lockout = apply(account.Lockout)
	return account.Lockout, nil
}

func (m *MemoryStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordDigest string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	account.PasswordDigest = passwordDigest
	return nil
}

func (m *MemoryStore) UpdateTwoFactor(ctx context.Context, id uuid.UUID, enabled bool, secret string, recoveryCodes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	account.TwoFactorEnabled = enabled
	account.TwoFactorSecret = secret
	account.RecoveryCodes = append([]string(nil), recoveryCodes...)
	return nil
}

func (m *MemoryStore) UpdateRecoveryCodes(ctx context.Context, id uuid.UUID, codes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	account.RecoveryCodes = append([]string(nil), codes...)
	return nil
}

func (m *MemoryStore) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time, ip string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	account.LastLoginAt = at
	account.LastLoginIP = ip
	return nil
}

// copyOf returns a detached copy so callers cannot mutate stored state
// outside UpdateLockout and friends. Callers hold the lock.
func (m *MemoryStore) copyOf(id uuid.UUID) (*Account, error) {
	account, ok := m.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	copied := *account
	copied.RecoveryCodes = append([]string(nil), account.RecoveryCodes...)
	return &copied, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
