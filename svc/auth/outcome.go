package auth

// Status enumerates the terminal and intermediate results of login and
// two-factor verification. A transport adapter maps these to status codes
// (401 for invalid credentials or codes, 423 for a locked account, 200 plus a
// challenge payload for a required second factor); that mapping lives outside
// this service.
type Status string

const (
	StatusAuthenticated      Status = "authenticated"
	StatusInvalidCredentials Status = "invalid_credentials"
	StatusAccountLocked      Status = "account_locked"
	StatusTwoFactorRequired  Status = "two_factor_required"
	StatusInvalidTotpCode    Status = "invalid_totp_code"
)

// LoginOutcome is the typed result of Login and VerifyTwoFactor. Wrong
// passwords, wrong codes, and unknown emails all collapse into the same
// generic statuses so the response never leaks which check failed; only
// policy outcomes (a lock) are reported distinctly.
type LoginOutcome struct {
	Status Status

	// Account is set only when Status is StatusAuthenticated.
	Account *Account

	// RetryAfterSeconds is set when Status is StatusAccountLocked.
	RetryAfterSeconds int

	// ChallengeToken is set when Status is StatusTwoFactorRequired. It binds
	// the partially-authenticated attempt to the account and is consumed by
	// VerifyTwoFactor.
	ChallengeToken string
}

func authenticated(account *Account) LoginOutcome {
	return LoginOutcome{Status: StatusAuthenticated, Account: account}
}

func invalidCredentials() LoginOutcome {
	return LoginOutcome{Status: StatusInvalidCredentials}
}

func accountLocked(retryAfterSeconds int) LoginOutcome {
	return LoginOutcome{Status: StatusAccountLocked, RetryAfterSeconds: retryAfterSeconds}
}

func twoFactorRequired(challengeToken string) LoginOutcome {
	return LoginOutcome{Status: StatusTwoFactorRequired, ChallengeToken: challengeToken}
}

func invalidTotpCode() LoginOutcome {
	return LoginOutcome{Status: StatusInvalidTotpCode}
}
