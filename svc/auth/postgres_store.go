package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hyrelab/authguard/pkg/lockout"
)

// PostgresPool is the subset of pgxpool.Pool used by PostgresStore.
type PostgresPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore implements CredentialStore on Postgres via pgx. Lockout
// counters are updated under a row lock (SELECT ... FOR UPDATE) so two
// concurrent failed attempts against the same account cannot both read the
// same counter and under-count past the threshold.
//
// Expected schema:
//
//	CREATE TABLE accounts (
//	    id                 UUID PRIMARY KEY,
//	    email              TEXT NOT NULL UNIQUE,
//	    password_digest    TEXT NOT NULL,
//	    totp_enabled       BOOLEAN NOT NULL DEFAULT FALSE,
//	    totp_secret        TEXT NOT NULL DEFAULT '',
//	    recovery_codes     TEXT[] NOT NULL DEFAULT '{}',
//	    failed_login_count INT NOT NULL DEFAULT 0,
//	    locked_until       TIMESTAMPTZ,
//	    last_login_at      TIMESTAMPTZ,
//	    last_login_ip      TEXT
//	);
type PostgresStore struct {
	db PostgresPool
}

// NewPostgresStore creates a store backed by a pgx pool.
func NewPostgresStore(db PostgresPool) *PostgresStore {
	if db == nil {
		panic("auth: db cannot be nil")
	}
	return &PostgresStore{db: db}
}

const selectAccountSQL = `
SELECT id, email, password_digest, totp_enabled, totp_secret, recovery_codes,
       failed_login_count, locked_until, last_login_at, last_login_ip
FROM accounts`

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	row := s.db.QueryRow(ctx, selectAccountSQL+" WHERE lower(email) = lower($1)", email)
	return scanAccount(row)
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	row := s.db.QueryRow(ctx, selectAccountSQL+" WHERE id = $1", id)
	return scanAccount(row)
}

func (s *PostgresStore) UpdateLockout(ctx context.Context, id uuid.UUID, apply func(lockout.State) lockout.State) (lockout.State, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return lockout.State{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		failedCount int
		lockedUntil *time.Time
	)
	err = tx.QueryRow(ctx,
		"SELECT failed_login_count, locked_until FROM accounts WHERE id = $1 FOR UPDATE", id,
	).Scan(&failedCount, &lockedUntil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lockout.State{}, ErrAccountNotFound
		}
		return lockout.State{}, err
	}

	state := lockout.State{FailedCount: failedCount}
	if lockedUntil != nil {
		state.LockedUntil = *lockedUntil
	}
	state = apply(state)

	var until *time.Time
	if !state.LockedUntil.IsZero() {
		until = &state.LockedUntil
	}
	if _, err := tx.Exec(ctx,
		"UPDATE accounts SET failed_login_count = $2, locked_until = $3 WHERE id = $1",
		id, state.FailedCount, until,
	); err != nil {
		return lockout.State{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return lockout.State{}, err
	}
	return state, nil
}

func (s *PostgresStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordDigest string) error {
	return s.exec(ctx,
		"UPDATE accounts SET password_digest = $2 WHERE id = $1",
		id, passwordDigest)
}

func (s *PostgresStore) UpdateTwoFactor(ctx context.Context, id uuid.UUID, enabled bool, secret string, recoveryCodes []string) error {
	if recoveryCodes == nil {
		recoveryCodes = []string{}
	}
	return s.exec(ctx,
		"UPDATE accounts SET totp_enabled = $2, totp_secret = $3, recovery_codes = $4 WHERE id = $1",
		id, enabled, secret, recoveryCodes)
}

func (s *PostgresStore) UpdateRecoveryCodes(ctx context.Context, id uuid.UUID, codes []string) error {
	if codes == nil {
		codes = []string{}
	}
	return s.exec(ctx,
		"UPDATE accounts SET recovery_codes = $2 WHERE id = $1",
		id, codes)
}

func (s *PostgresStore) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time, ip string) error {
	return s.exec(ctx,
		"UPDATE accounts SET last_login_at = $2, last_login_ip = $3 WHERE id = $1",
		id, at, ip)
}

func (s *PostgresStore) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*Account, error) {
	var (
		account     Account
		lockedUntil *time.Time
		lastLoginAt *time.Time
		lastLoginIP *string
	)
	err := row.Scan(
		&account.ID, &account.Email, &account.PasswordDigest,
		&account.TwoFactorEnabled, &account.TwoFactorSecret, &account.RecoveryCodes,
		&account.Lockout.FailedCount, &lockedUntil, &lastLoginAt, &lastLoginIP,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if lockedUntil != nil {
		account.Lockout.LockedUntil = *lockedUntil
	}
	if lastLoginAt != nil {
		account.LastLoginAt = *lastLoginAt
	}
	if lastLoginIP != nil {
		account.LastLoginIP = *lastLoginIP
	}
	return &account, nil
}
