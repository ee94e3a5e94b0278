package auth

import "errors"

var (
	// ErrAccountNotFound is returned by CredentialStore implementations for
	// unknown emails and ids.
	ErrAccountNotFound = errors.New("account not found")

	// ErrDataIntegrity indicates an account row violating a data-model
	// invariant, e.g. two-factor enabled without a stored secret. It is an
	// operational error, never a login outcome.
	ErrDataIntegrity = errors.New("account data integrity violation")

	// ErrInvalidPassword is returned by re-authentication checks (change
	// password, disable two-factor) when the current password is wrong.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidTwoFactorCode is returned by enrollment confirmation when the
	// code does not match the fresh secret.
	ErrInvalidTwoFactorCode = errors.New("invalid two-factor code")

	// ErrChallengeInvalid covers malformed, forged, and expired two-factor
	// challenge tokens.
	ErrChallengeInvalid = errors.New("invalid challenge token")

	// ErrMissingChallengeSecret indicates the service was constructed without
	// a challenge signing secret.
	ErrMissingChallengeSecret = errors.New("challenge secret is not set")
)
