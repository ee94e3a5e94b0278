package auth_test

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyrelab/authguard/pkg/audit"
	"github.com/hyrelab/authguard/pkg/lockout"
	"github.com/hyrelab/authguard/pkg/resettoken"
	"github.com/hyrelab/authguard/pkg/totp"
	"github.com/hyrelab/authguard/svc/auth"
)

const (
	testEmail  = "alice@example.com"
	testPass   = "correct horse battery staple"
	testIP     = "203.0.113.7"
	testUA     = "integration-test/1.0"
	testSecret = "JBSWY3DPEHPK3PXP"
)

// fakeHasher avoids bcrypt cost in tests and counts comparisons so the
// "locked accounts skip the password check" and dummy-digest properties are
// observable.
type fakeHasher struct {
	mu            sync.Mutex
	verifyCalls   int
	dummyVerifies int
}

func (f *fakeHasher) Hash(plaintext string) (string, error) {
	return "digest:" + plaintext, nil
}

func (f *fakeHasher) Verify(digest, plaintext string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if digest == f.DummyDigest() {
		f.dummyVerifies++
		return false
	}
	f.verifyCalls++
	return digest == "digest:"+plaintext
}

func (f *fakeHasher) DummyDigest() string { return "digest:\x00never-matches" }

func (f *fakeHasher) counts() (verify, dummy int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verifyCalls, f.dummyVerifies
}

type sentMail struct {
	email string
	link  string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeNotifier) SendPasswordReset(ctx context.Context, email, resetLink string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{email: email, link: resetLink})
	return nil
}

func (f *fakeNotifier) all() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMail(nil), f.sent...)
}

// fixture wires the service against in-memory collaborators with a movable
// clock shared by the service, the TOTP engine, the reset tokens, and the
// audit recorder.
type fixture struct {
	svc      *auth.Service
	store    *auth.MemoryStore
	storage  *audit.MemoryStorage
	hasher   *fakeHasher
	notifier *fakeNotifier
	engine   *totp.Engine
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:    auth.NewMemoryStore(),
		storage:  audit.NewMemoryStorage(),
		hasher:   &fakeHasher{},
		notifier: &fakeNotifier{},
		now:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }

	f.engine = totp.New(totp.WithClock(clock))

	cfg := auth.Config{
		Issuer:            "authguard-test",
		LockThreshold:     5,
		LockDuration:      15 * time.Minute,
		ResetTokenTTL:     time.Hour,
		ResetLinkBaseURL:  "https://example.com/reset",
		ChallengeSecret:   "test-challenge-secret",
		ChallengeTTL:      5 * time.Minute,
		RecoveryCodeCount: 8,
	}

	resets := auth.NewResetTokenService(cfg, resettoken.NewMemoryStore(), resettoken.WithClock(clock))
	challenges := auth.NewMemoryChallengeStore(auth.WithChallengeClock(clock))
	recorder := audit.NewRecorder(f.storage, audit.WithClock(clock))

	f.svc = auth.New(cfg, f.store, f.hasher, resets, challenges, recorder, f.notifier,
		auth.WithClock(clock),
		auth.WithTOTPEngine(f.engine),
	)
	return f
}

func (f *fixture) addAccount(twoFactor bool) auth.Account {
	account := auth.Account{
		ID:             uuid.New(),
		Email:          testEmail,
		PasswordDigest: "digest:" + testPass,
	}
	if twoFactor {
		account.TwoFactorEnabled = true
		account.TwoFactorSecret = testSecret
		account.RecoveryCodes = []string{"DEAD-BEEF", "CAFE-F00D"}
	}
	f.store.Put(account)
	return account
}

func (f *fixture) login(t *testing.T, email, password string) auth.LoginOutcome {
	t.Helper()
	outcome, err := f.svc.Login(context.Background(), email, password, testIP, testUA)
	require.NoError(t, err)
	return outcome
}

func (f *fixture) events(action audit.Action) []audit.Event {
	var out []audit.Event
	for _, e := range f.storage.Events() {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

func TestService_Login_Success(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	account := f.addAccount(false)

	outcome := f.login(t, testEmail, testPass)

	require.Equal(t, auth.StatusAuthenticated, outcome.Status)
	require.NotNil(t, outcome.Account)
	assert.Equal(t, account.ID, outcome.Account.ID)
	assert.Equal(t, f.now, outcome.Account.LastLoginAt)
	assert.Equal(t, testIP, outcome.Account.LastLoginIP)

	events := f.events(audit.ActionLogin)
	require.Len(t, events, 1)
	assert.True(t, events[0].Success)
	require.NotNil(t, events[0].AccountID)
	assert.Equal(t, account.ID, *events[0].AccountID)
	assert.Equal(t, testIP, events[0].IP)
	assert.Equal(t, testUA, events[0].UserAgent)
}

func TestService_Login_UnknownEmail(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addAccount(false)

	outcome := f.login(t, "nobody@example.com", testPass)
	assert.Equal(t, auth.StatusInvalidCredentials, outcome.Status)

	_, dummy := f.hasher.counts()
	assert.Equal(t, 1, dummy, "unknown email must burn a dummy hash comparison")

	events := f.events(audit.ActionFailedLogin)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].AccountID)
	assert.Equal(t, "unknown_email", events[0].Reason)
	assert.False(t, events[0].Success)
}

func TestService_Login_WrongPassword(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	account := f.addAccount(false)

	outcome := f.login(t, testEmail, "wrong")
	assert.Equal(t, auth.StatusInvalidCredentials, outcome.Status)

	stored, err := f.store.FindByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Lockout.FailedCount)

	events := f.events(audit.ActionFailedLogin)
	require.Len(t, events, 1)
	assert.Equal(t, "invalid_password", events[0].Reason)
}

func TestService_Login_Lockout(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	account := f.addAccount(false)
	ctx := context.Background()

	var outcome auth.LoginOutcome
	for n := 0; n < 5; n++ {
		outcome = f.login(t, testEmail, "wrong")
	}
	require.Equal(t, auth.StatusAccountLocked, outcome.Status)
	assert.Equal(t, 15*60, outcome.RetryAfterSeconds)

	// Four plain failures, then the threshold-crossing one reported as a lock.
	assert.Len(t, f.events(audit.ActionFailedLogin), 4)
	lockEvents := f.events(audit.ActionAccountLocked)
	require.Len(t, lockEvents, 1)
	assert.Equal(t, map[string]any{"failed_count": 5}, lockEvents[0].Metadata)

	// The sixth attempt carries the correct password but must be rejected
	// before the digest is ever compared.
	verifiesBefore, _ := f.hasher.counts()
	outcome = f.login(t, testEmail, testPass)
	verifiesAfter, _ := f.hasher.counts()

	assert.Equal(t, auth.StatusAccountLocked, outcome.Status)
	assert.Positive(t, outcome.RetryAfterSeconds)
	assert.Equal(t, verifiesBefore, verifiesAfter, "locked account must not reach the hasher")
	assert.Len(t, f.events(audit.ActionAccountLocked), 2)

	// After the window the lock expires lazily and a correct password resets
	// the counter.
	f.now = f.now.Add(15*time.Minute + time.Second)
	outcome = f.login(t, testEmail, testPass)
	require.Equal(t, auth.StatusAuthenticated, outcome.Status)

	stored, err := f.store.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, lockout.State{}, stored.Lockout)
}

func TestService_Login_SuccessResetsCounter(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	account := f.addAccount(false)

	for n := 0; n < 3; n++ {
		f.login(t, testEmail, "wrong")
	}
	require.Equal(t, auth.StatusAuthenticated, f.login(t, testEmail, testPass).Status)
	for n := 0; n < 3; n++ {
		f.login(t, testEmail, "wrong")
	}

	stored, err := f.store.FindByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Lockout.FailedCount, "counter restarted after the success")
	assert.False(t, stored.Lockout.Locked(f.now))
}

func TestService_Login_TwoFactorRequired(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	account := f.addAccount(true)

	outcome := f.login(t, testEmail, testPass)
	require.Equal(t, auth.StatusTwoFactorRequired, outcome.Status)
	assert.NotEmpty(t, outcome.ChallengeToken)
	assert.Nil(t, outcome.Account)

	// No terminal outcome yet: no login event, counters untouched.
	assert.Empty(t, f.events(audit.ActionLogin))
	stored, err := f.store.FindByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Lockout.FailedCount)
}

func TestService_VerifyTwoFactor_TOTP(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	account := f.addAccount(true)
	ctx := context.Background()

	challenge := f.login(t, testEmail, testPass).ChallengeToken
	code := f.engine.Generate(testSecret)

	outcome, err := f.svc.VerifyTwoFactor(ctx, challenge, code, testIP, testUA)
	require.NoError(t, err)
	require.Equal(t, auth.StatusAuthenticated, outcome.Status)
	assert.Equal(t, account.ID, outcome.Account.ID)

	events := f.events(audit.ActionTwoFactorVerified)
	require.Len(t, events, 1)
	assert.Equal(t, map[string]any{"method": "totp"}, events[0].Metadata)
}

func TestService_VerifyTwoFactor_RecoveryCode(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	account := f.addAccount(true)
	ctx := context.Background()

	challenge := f.login(t, testEmail, testPass).ChallengeToken

	outcome, err := f.svc.VerifyTwoFactor(ctx, challenge, "dead beef", testIP, testUA)
	require.NoError(t, err)
	require.Equal(t, auth.StatusAuthenticated, outcome.Status)

	stored, err := f.store.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"CAFE-F00D"}, stored.RecoveryCodes, "consumed code removed")

	events := f.events(audit.ActionTwoFactorVerified)
	require.Len(t, events, 1)
	assert.Equal(t, map[string]any{"method": "recovery_code"}, events[0].Metadata)

	// Replaying the consumed code is a plain failure.
	challenge = f.login(t, testEmail, testPass).ChallengeToken
	outcome, err = f.svc.VerifyTwoFactor(ctx, challenge, "DEAD-BEEF", testIP, testUA)
	require.NoError(t, err)
	assert.Equal(t, auth.StatusInvalidTotpCode, outcome.Status)
}

func TestService_VerifyTwoFactor_WrongCode(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	account := f.addAccount(true)
	ctx := context.Background()

	challenge := f.login(t, testEmail, testPass).ChallengeToken

	outcome, err := f.svc.VerifyTwoFactor(ctx, challenge, "000000", testIP, testUA)
	require.NoError(t, err)
	assert.Equal(t, auth.StatusInvalidTotpCode, outcome.Status)

	stored, err := f.store.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Lockout.FailedCount, "2FA failures count toward lockout")

	events := f.events(audit.ActionTwoFactorFailed)
	require.Len(t, events, 1)
	assert.Equal(t, "invalid_code", events[0].Reason)
}

func TestService_VerifyTwoFactor_FailureCrossesThreshold(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	account := f.addAccount(true)
	account.Lockout = lockout.State{FailedCount: 4}
	f.store.Put(account)
	ctx := context.Background()

	challenge := f.login(t, testEmail, testPass).ChallengeToken

	outcome, err := f.svc.VerifyTwoFactor(ctx, challenge, "000000", testIP, testUA)
	require.NoError(t, err)
	assert.Equal(t, auth.StatusAccountLocked, outcome.Status)

	stored, err := f.store.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, stored.Lockout.Locked(f.now))
	require.Len(t, f.events(audit.ActionAccountLocked), 1)
}

func TestService_VerifyTwoFactor_ChallengeConsumedOnSuccess(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	account := f.addAccount(true)
	ctx := context.Background()

	challenge := f.login(t, testEmail, testPass).ChallengeToken

	outcome, err := f.svc.VerifyTwoFactor(ctx, challenge, f.engine.Generate(testSecret), testIP, testUA)
	require.NoError(t, err)
	require.Equal(t, auth.StatusAuthenticated, outcome.Status)

	// Replaying the same challenge, even with a currently valid code, must
	// fail: the server-held marker was consumed by the first redemption.
	outcome, err = f.svc.VerifyTwoFactor(ctx, challenge, f.engine.Generate(testSecret), testIP, testUA)
	require.NoError(t, err)
	assert.Equal(t, auth.StatusInvalidCredentials, outcome.Status)

	events := f.events(audit.ActionTwoFactorFailed)
	require.Len(t, events, 1)
	assert.Equal(t, "invalid_challenge", events[0].Reason)
	require.NotNil(t, events[0].AccountID)
	assert.Equal(t, account.ID, *events[0].AccountID)
}

func TestService_VerifyTwoFactor_ChallengeConsumedOnFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addAccount(true)
	ctx := context.Background()

	challenge := f.login(t, testEmail, testPass).ChallengeToken

	outcome, err := f.svc.VerifyTwoFactor(ctx, challenge, "000000", testIP, testUA)
	require.NoError(t, err)
	require.Equal(t, auth.StatusInvalidTotpCode, outcome.Status)

	// A wrong code burns the challenge too; the correct code afterwards
	// needs a fresh login.
	outcome, err = f.svc.VerifyTwoFactor(ctx, challenge, f.engine.Generate(testSecret), testIP, testUA)
	require.NoError(t, err)
	assert.Equal(t, auth.StatusInvalidCredentials, outcome.Status)

	challenge = f.login(t, testEmail, testPass).ChallengeToken
	outcome, err = f.svc.VerifyTwoFactor(ctx, challenge, f.engine.Generate(testSecret), testIP, testUA)
	require.NoError(t, err)
	assert.Equal(t, auth.StatusAuthenticated, outcome.Status)
}

func TestService_VerifyTwoFactor_BadChallenge(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addAccount(true)
	ctx := context.Background()

	outcome, err := f.svc.VerifyTwoFactor(ctx, "not-a-challenge", "123456", testIP, testUA)
	require.NoError(t, err)
	assert.Equal(t, auth.StatusInvalidCredentials, outcome.Status)

	events := f.events(audit.ActionTwoFactorFailed)
	require.Len(t, events, 1)
	assert.Equal(t, "invalid_challenge", events[0].Reason)
	assert.Nil(t, events[0].AccountID)
}

func TestService_VerifyTwoFactor_ExpiredChallenge(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addAccount(true)
	ctx := context.Background()

	challenge := f.login(t, testEmail, testPass).ChallengeToken
	code := f.engine.Generate(testSecret)

	f.now = f.now.Add(6 * time.Minute) // past the 5 minute challenge TTL

	outcome, err := f.svc.VerifyTwoFactor(ctx, challenge, code, testIP, testUA)
	require.NoError(t, err)
	assert.Equal(t, auth.StatusInvalidCredentials, outcome.Status)
}

func TestService_Login_IntegrityViolation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	account := f.addAccount(true)
	account.TwoFactorSecret = "" // violates the secret-iff-enabled invariant
	f.store.Put(account)

	_, err := f.svc.Login(context.Background(), testEmail, testPass, testIP, testUA)
	assert.ErrorIs(t, err, auth.ErrDataIntegrity)
}

func TestService_RequestPasswordReset(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	account := f.addAccount(false)
	ctx := context.Background()

	t.Run("unknown email succeeds outwardly and sends nothing", func(t *testing.T) {
		require.NoError(t, f.svc.RequestPasswordReset(ctx, "nobody@example.com"))
		assert.Empty(t, f.notifier.all())
		assert.Empty(t, f.events(audit.ActionPasswordResetRequest))
	})

	t.Run("known email gets a tokenized link", func(t *testing.T) {
		require.NoError(t, f.svc.RequestPasswordReset(ctx, testEmail))

		sent := f.notifier.all()
		require.Len(t, sent, 1)
		assert.Equal(t, testEmail, sent[0].email)

		u, err := url.Parse(sent[0].link)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(sent[0].link, "https://example.com/reset"))
		assert.NotEmpty(t, u.Query().Get("token"))

		events := f.events(audit.ActionPasswordResetRequest)
		require.Len(t, events, 1)
		assert.Equal(t, account.ID, *events[0].AccountID)
	})
}

func TestService_ResetPassword(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	issueToken := func(t *testing.T, f *fixture) string {
		t.Helper()
		require.NoError(t, f.svc.RequestPasswordReset(ctx, testEmail))
		sent := f.notifier.all()
		u, err := url.Parse(sent[len(sent)-1].link)
		require.NoError(t, err)
		return u.Query().Get("token")
	}

	t.Run("token works exactly once", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.addAccount(false)
		token := issueToken(t, f)

		require.NoError(t, f.svc.ResetPassword(ctx, token, "brand new password"))

		assert.Equal(t, auth.StatusAuthenticated, f.login(t, testEmail, "brand new password").Status)
		assert.Equal(t, auth.StatusInvalidCredentials, f.login(t, testEmail, testPass).Status)

		err := f.svc.ResetPassword(ctx, token, "another password")
		assert.ErrorIs(t, err, resettoken.ErrTokenInvalid)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.addAccount(false)
		token := issueToken(t, f)

		f.now = f.now.Add(time.Hour + time.Second)
		err := f.svc.ResetPassword(ctx, token, "whatever")
		assert.ErrorIs(t, err, resettoken.ErrTokenExpired)
	})

	t.Run("garbage token", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.addAccount(false)

		err := f.svc.ResetPassword(ctx, "garbage", "whatever")
		assert.ErrorIs(t, err, resettoken.ErrTokenInvalid)

		events := f.events(audit.ActionPasswordReset)
		require.Len(t, events, 1)
		assert.False(t, events[0].Success)
	})

	t.Run("reset clears an active lock", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.addAccount(false)
		token := issueToken(t, f)

		for n := 0; n < 5; n++ {
			f.login(t, testEmail, "wrong")
		}
		require.Equal(t, auth.StatusAccountLocked, f.login(t, testEmail, testPass).Status)

		require.NoError(t, f.svc.ResetPassword(ctx, token, "fresh password"))
		assert.Equal(t, auth.StatusAuthenticated, f.login(t, testEmail, "fresh password").Status)
	})
}

func TestNewResetTokenService_HonorsConfiguredTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cfg := auth.Config{ResetTokenTTL: 30 * time.Minute}

	resets := auth.NewResetTokenService(cfg, resettoken.NewMemoryStore(),
		resettoken.WithClock(func() time.Time { return now }))

	token, err := resets.Issue(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*time.Minute), token.ExpiresAt)
}

func TestService_ChangePassword(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	account := f.addAccount(false)
	ctx := context.Background()

	err := f.svc.ChangePassword(ctx, account.ID, "wrong", "new password", testIP, testUA)
	assert.ErrorIs(t, err, auth.ErrInvalidPassword)

	require.NoError(t, f.svc.ChangePassword(ctx, account.ID, testPass, "new password", testIP, testUA))
	assert.Equal(t, auth.StatusAuthenticated, f.login(t, testEmail, "new password").Status)

	events := f.events(audit.ActionPasswordChange)
	require.Len(t, events, 2)
	assert.False(t, events[0].Success)
	assert.True(t, events[1].Success)
}

func TestService_Unlock(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	account := f.addAccount(false)
	ctx := context.Background()

	for n := 0; n < 5; n++ {
		f.login(t, testEmail, "wrong")
	}
	require.Equal(t, auth.StatusAccountLocked, f.login(t, testEmail, testPass).Status)

	require.NoError(t, f.svc.Unlock(ctx, account.ID))
	assert.Equal(t, auth.StatusAuthenticated, f.login(t, testEmail, testPass).Status)
	assert.Len(t, f.events(audit.ActionAccountUnlocked), 1)
}

func TestService_Logout(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	account := f.addAccount(false)

	require.NoError(t, f.svc.Logout(context.Background(), account.ID, testIP, testUA))

	events := f.events(audit.ActionLogout)
	require.Len(t, events, 1)
	assert.Equal(t, account.ID, *events[0].AccountID)
}

func TestService_TwoFactorEnrollment(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	account := f.addAccount(false)
	ctx := context.Background()

	enrollment, err := f.svc.BeginTwoFactorEnrollment(ctx, account.ID)
	require.NoError(t, err)
	assert.Regexp(t, "^[A-Z2-7]{32}$", enrollment.Secret)
	assert.Len(t, enrollment.RecoveryCodes, 8)
	assert.Contains(t, enrollment.URI, "otpauth://totp/authguard-test:alice@example.com")
	assert.Contains(t, enrollment.QRCode, "data:image/png;base64,")

	// Nothing persisted until confirmation.
	stored, err := f.store.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.False(t, stored.TwoFactorEnabled)

	err = f.svc.ConfirmTwoFactor(ctx, account.ID, enrollment, "000000", testIP, testUA)
	assert.ErrorIs(t, err, auth.ErrInvalidTwoFactorCode)

	code := f.engine.Generate(enrollment.Secret)
	require.NoError(t, f.svc.ConfirmTwoFactor(ctx, account.ID, enrollment, code, testIP, testUA))

	stored, err = f.store.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, stored.TwoFactorEnabled)
	assert.Equal(t, enrollment.Secret, stored.TwoFactorSecret)
	assert.Equal(t, enrollment.RecoveryCodes, stored.RecoveryCodes)
	assert.Len(t, f.events(audit.ActionTwoFactorEnabled), 2) // one failed, one succeeded
}

func TestService_DisableTwoFactor(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	account := f.addAccount(true)
	ctx := context.Background()

	err := f.svc.DisableTwoFactor(ctx, account.ID, "wrong", testIP, testUA)
	assert.ErrorIs(t, err, auth.ErrInvalidPassword)

	require.NoError(t, f.svc.DisableTwoFactor(ctx, account.ID, testPass, testIP, testUA))

	stored, err := f.store.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.False(t, stored.TwoFactorEnabled)
	assert.Empty(t, stored.TwoFactorSecret)
	assert.Empty(t, stored.RecoveryCodes)
	assert.Len(t, f.events(audit.ActionTwoFactorDisabled), 2)
}
