package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/hyrelab/authguard/pkg/audit"
	"github.com/hyrelab/authguard/pkg/lockout"
	"github.com/hyrelab/authguard/pkg/mailer"
	"github.com/hyrelab/authguard/pkg/resettoken"
	"github.com/hyrelab/authguard/pkg/totp"
)

// Service orchestrates credential verification, lockout, two-factor
// authentication, recovery codes, and password-reset flows. It owns account
// counter transitions exclusively; durable storage stays behind
// CredentialStore, and the service holds no per-request state.
type Service struct {
	cfg        Config
	store      CredentialStore
	hasher     PasswordHasher
	totp       *totp.Engine
	policy     lockout.Policy
	resets     *resettoken.Service
	challenges ChallengeStore
	recorder   *audit.Recorder
	notifier   mailer.Notifier
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source for deterministic lockout-expiry tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the operational logger for integrity violations and audit
// sink failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTOTPEngine overrides the TOTP engine, used in tests to pin its clock.
func WithTOTPEngine(engine *totp.Engine) Option {
	return func(s *Service) {
		if engine != nil {
			s.totp = engine
		}
	}
}

// New creates the authentication service. All collaborators are required;
// missing ones are a wiring bug and fail fast.
func New(
	cfg Config,
	store CredentialStore,
	hasher PasswordHasher,
	resets *resettoken.Service,
	challenges ChallengeStore,
	recorder *audit.Recorder,
	notifier mailer.Notifier,
	opts ...Option,
) *Service {
	switch {
	case store == nil:
		panic("auth: credential store cannot be nil")
	case hasher == nil:
		panic("auth: password hasher cannot be nil")
	case resets == nil:
		panic("auth: reset token service cannot be nil")
	case challenges == nil:
		panic("auth: challenge store cannot be nil")
	case recorder == nil:
		panic("auth: audit recorder cannot be nil")
	case notifier == nil:
		panic("auth: notifier cannot be nil")
	}

	s := &Service{
		cfg:        cfg,
		store:      store,
		hasher:     hasher,
		totp:       totp.New(),
		policy:     lockout.Policy{Threshold: cfg.LockThreshold, Duration: cfg.LockDuration}.Normalize(),
		resets:     resets,
		challenges: challenges,
		recorder:   recorder,
		notifier:   notifier,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewResetTokenService builds the password-reset token service from the
// shared configuration so the configured token TTL is honored wherever the
// subsystem is assembled.
func NewResetTokenService(cfg Config, store resettoken.Store, opts ...resettoken.Option) *resettoken.Service {
	return resettoken.New(store, append([]resettoken.Option{resettoken.WithTTL(cfg.ResetTokenTTL)}, opts...)...)
}

// Login verifies an email/password pair against the lockout policy and the
// external hasher. Unknown emails burn a hash comparison against a dummy
// digest so they are not distinguishable from wrong passwords by timing, and
// their audit events carry no account id.
func (s *Service) Login(ctx context.Context, email, password, originAddress, userAgent string) (LoginOutcome, error) {
	origin := audit.WithOrigin(originAddress, userAgent)

	account, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			s.hasher.Verify(s.hasher.DummyDigest(), password)
			s.recordFailure(ctx, audit.ActionFailedLogin, "unknown_email", origin)
			return invalidCredentials(), nil
		}
		return LoginOutcome{}, err
	}

	now := s.now()
	if account.Lockout.Locked(now) {
		// Locked accounts are rejected before the password is even hashed.
		s.recordFailure(ctx, audit.ActionAccountLocked, "account_locked", audit.WithAccount(account.ID), origin)
		return accountLocked(retryAfterSeconds(account.Lockout, now)), nil
	}

	if !s.hasher.Verify(account.PasswordDigest, password) {
		return s.failAttempt(ctx, account.ID, audit.ActionFailedLogin, "invalid_password", invalidCredentials(), origin)
	}

	if account.TwoFactorEnabled {
		if account.TwoFactorSecret == "" {
			s.logger.ErrorContext(ctx, "two-factor enabled without stored secret",
				slog.String("account_id", account.ID.String()))
			return LoginOutcome{}, fmt.Errorf("%w: two-factor enabled without secret", ErrDataIntegrity)
		}
		// Counters stay untouched and no login event is emitted until the
		// second factor lands. The marker held by the challenge store makes
		// the token single-use.
		nonce := uuid.NewString()
		token, err := generateChallenge(s.cfg.ChallengeSecret, account.ID, nonce, now.Add(s.challengeTTL()))
		if err != nil {
			return LoginOutcome{}, err
		}
		if err := s.challenges.Save(ctx, nonce, s.challengeTTL()); err != nil {
			return LoginOutcome{}, err
		}
		return twoFactorRequired(token), nil
	}

	if err := s.completeLogin(ctx, account, now, originAddress); err != nil {
		return LoginOutcome{}, err
	}
	s.recordSuccess(ctx, audit.ActionLogin, audit.WithAccount(account.ID), origin)
	return authenticated(account), nil
}

// VerifyTwoFactor resolves the account from a challenge token issued by Login
// and verifies the code, first as TOTP, then as a recovery code. A consumed
// recovery code is removed from the stored list before the outcome is
// returned. Failed codes count toward lockout exactly like failed passwords.
// The challenge is consumed by the first attempt that presents it, whatever
// the outcome; retrying requires a fresh login.
func (s *Service) VerifyTwoFactor(ctx context.Context, challengeToken, code, originAddress, userAgent string) (LoginOutcome, error) {
	origin := audit.WithOrigin(originAddress, userAgent)
	now := s.now()

	accountID, nonce, err := parseChallenge(s.cfg.ChallengeSecret, challengeToken, now)
	if err != nil {
		if errors.Is(err, ErrChallengeInvalid) {
			s.recordFailure(ctx, audit.ActionTwoFactorFailed, "invalid_challenge", origin)
			return invalidCredentials(), nil
		}
		return LoginOutcome{}, err
	}

	live, err := s.challenges.Consume(ctx, nonce)
	if err != nil {
		return LoginOutcome{}, err
	}
	if !live {
		s.recordFailure(ctx, audit.ActionTwoFactorFailed, "invalid_challenge",
			audit.WithAccount(accountID), origin)
		return invalidCredentials(), nil
	}

	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			s.recordFailure(ctx, audit.ActionTwoFactorFailed, "invalid_challenge", origin)
			return invalidCredentials(), nil
		}
		return LoginOutcome{}, err
	}

	if account.Lockout.Locked(now) {
		s.recordFailure(ctx, audit.ActionAccountLocked, "account_locked", audit.WithAccount(account.ID), origin)
		return accountLocked(retryAfterSeconds(account.Lockout, now)), nil
	}

	if !account.TwoFactorEnabled || account.TwoFactorSecret == "" {
		s.logger.ErrorContext(ctx, "two-factor challenge for account without usable secret",
			slog.String("account_id", account.ID.String()))
		return LoginOutcome{}, fmt.Errorf("%w: challenge for account without two-factor", ErrDataIntegrity)
	}

	method := "totp"
	verified := s.totp.Verify(account.TwoFactorSecret, code)
	if !verified {
		if remaining, consumed := totp.VerifyAndConsume(code, account.RecoveryCodes); consumed {
			if err := s.store.UpdateRecoveryCodes(ctx, account.ID, remaining); err != nil {
				return LoginOutcome{}, err
			}
			account.RecoveryCodes = remaining
			method = "recovery_code"
			verified = true
		}
	}

	if !verified {
		return s.failAttempt(ctx, account.ID, audit.ActionTwoFactorFailed, "invalid_code", invalidTotpCode(), origin)
	}

	if err := s.completeLogin(ctx, account, now, originAddress); err != nil {
		return LoginOutcome{}, err
	}
	s.recordSuccess(ctx, audit.ActionTwoFactorVerified,
		audit.WithAccount(account.ID), origin, audit.WithMetadata("method", method))
	return authenticated(account), nil
}

// RequestPasswordReset issues a reset token and mails the link. It succeeds
// outwardly whether or not the email exists, to prevent enumeration.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil
		}
		return err
	}

	token, err := s.resets.Issue(ctx, account.ID)
	if err != nil {
		return err
	}

	link, err := s.resetLink(token.Value)
	if err != nil {
		return err
	}
	if err := s.notifier.SendPasswordReset(ctx, account.Email, link); err != nil {
		return err
	}

	s.recordSuccess(ctx, audit.ActionPasswordResetRequest, audit.WithAccount(account.ID))
	return nil
}

// ResetPassword redeems a reset token exactly once, stores the new password,
// and clears any lockout. Unknown and consumed tokens return
// resettoken.ErrTokenInvalid; stale ones return resettoken.ErrTokenExpired.
func (s *Service) ResetPassword(ctx context.Context, tokenValue, newPassword string) error {
	token, err := s.resets.Consume(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, resettoken.ErrTokenInvalid) || errors.Is(err, resettoken.ErrTokenExpired) {
			s.recordFailure(ctx, audit.ActionPasswordReset, "invalid_token")
		}
		return err
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, token.AccountID, digest); err != nil {
		return err
	}
	// A proven mailbox owner should not stay locked out.
	if _, err := s.store.UpdateLockout(ctx, token.AccountID, s.policy.Unlock); err != nil {
		return err
	}

	s.recordSuccess(ctx, audit.ActionPasswordReset, audit.WithAccount(token.AccountID))
	return nil
}

// ChangePassword re-verifies the current password before storing a new one.
func (s *Service) ChangePassword(ctx context.Context, accountID uuid.UUID, currentPassword, newPassword, originAddress, userAgent string) error {
	origin := audit.WithOrigin(originAddress, userAgent)

	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(account.PasswordDigest, currentPassword) {
		s.recordFailure(ctx, audit.ActionPasswordChange, "invalid_password", audit.WithAccount(accountID), origin)
		return ErrInvalidPassword
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, accountID, digest); err != nil {
		return err
	}

	s.recordSuccess(ctx, audit.ActionPasswordChange, audit.WithAccount(accountID), origin)
	return nil
}

// Unlock is the administrative reset of an account's lockout counters.
func (s *Service) Unlock(ctx context.Context, accountID uuid.UUID) error {
	if _, err := s.store.UpdateLockout(ctx, accountID, s.policy.Unlock); err != nil {
		return err
	}
	s.recordSuccess(ctx, audit.ActionAccountUnlocked, audit.WithAccount(accountID))
	return nil
}

// Logout records the end of a session; session teardown itself lives with
// the caller.
func (s *Service) Logout(ctx context.Context, accountID uuid.UUID, originAddress, userAgent string) error {
	s.recordSuccess(ctx, audit.ActionLogout, audit.WithAccount(accountID), audit.WithOrigin(originAddress, userAgent))
	return nil
}

// failAttempt applies the lockout failure transition atomically in the store
// and emits the single audit event for the attempt: the given action while
// below threshold, account_locked when this failure crossed it.
func (s *Service) failAttempt(ctx context.Context, accountID uuid.UUID, action audit.Action, reason string, notLocked LoginOutcome, origin audit.EventOption) (LoginOutcome, error) {
	now := s.now()
	state, err := s.store.UpdateLockout(ctx, accountID, func(st lockout.State) lockout.State {
		return s.policy.Fail(st, now)
	})
	if err != nil {
		return LoginOutcome{}, err
	}

	if state.Locked(now) {
		s.recordFailure(ctx, audit.ActionAccountLocked, reason,
			audit.WithAccount(accountID), origin, audit.WithMetadata("failed_count", state.FailedCount))
		return accountLocked(retryAfterSeconds(state, now)), nil
	}

	s.recordFailure(ctx, action, reason, audit.WithAccount(accountID), origin)
	return notLocked, nil
}

// completeLogin resets counters and records the successful login on both the
// account row and the in-memory copy handed back to the caller.
func (s *Service) completeLogin(ctx context.Context, account *Account, now time.Time, originAddress string) error {
	if _, err := s.store.UpdateLockout(ctx, account.ID, func(st lockout.State) lockout.State {
		return s.policy.Succeed(st, now)
	}); err != nil {
		return err
	}
	if err := s.store.RecordLogin(ctx, account.ID, now, originAddress); err != nil {
		return err
	}

	account.Lockout = lockout.State{}
	account.LastLoginAt = now
	account.LastLoginIP = originAddress
	return nil
}

func (s *Service) resetLink(tokenValue string) (string, error) {
	u, err := url.Parse(s.cfg.ResetLinkBaseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", tokenValue)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *Service) challengeTTL() time.Duration {
	if s.cfg.ChallengeTTL > 0 {
		return s.cfg.ChallengeTTL
	}
	return 5 * time.Minute
}

// recordSuccess and recordFailure report audit-sink failures to the
// operational log instead of failing the authentication flow.
func (s *Service) recordSuccess(ctx context.Context, action audit.Action, opts ...audit.EventOption) {
	if err := s.recorder.Success(ctx, action, opts...); err != nil {
		s.logger.ErrorContext(ctx, "failed to record audit event",
			slog.String("action", string(action)), slog.Any("error", err))
	}
}

func (s *Service) recordFailure(ctx context.Context, action audit.Action, reason string, opts ...audit.EventOption) {
	if err := s.recorder.Failure(ctx, action, reason, opts...); err != nil {
		s.logger.ErrorContext(ctx, "failed to record audit event",
			slog.String("action", string(action)), slog.Any("error", err))
	}
}

func retryAfterSeconds(state lockout.State, now time.Time) int {
	return int(math.Ceil(state.RetryAfter(now).Seconds()))
}
