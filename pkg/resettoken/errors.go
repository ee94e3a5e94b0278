package resettoken

import "errors"

var (
	// ErrTokenInvalid covers unknown, malformed, and already-consumed tokens.
	// Callers must not reveal which check failed.
	ErrTokenInvalid = errors.New("invalid reset token")

	// ErrTokenExpired is returned for a token past its expiry. Expiry is not
	// secret-dependent, so it may be reported distinctly.
	ErrTokenExpired = errors.New("reset token expired")

	// ErrTokenNotFound is returned by Store implementations for unknown or
	// already-consumed token values.
	ErrTokenNotFound = errors.New("reset token not found")

	// ErrFailedToGenerateToken indicates the random source failed.
	ErrFailedToGenerateToken = errors.New("failed to generate reset token")
)
