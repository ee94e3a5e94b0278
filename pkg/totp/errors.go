package totp

import "errors"

var (
	ErrFailedToGenerateSecret       = errors.New("failed to generate TOTP secret")
	ErrMissingSecret                = errors.New("missing secret")
	ErrMissingAccountName           = errors.New("missing account name")
	ErrMissingIssuer                = errors.New("missing issuer")
	ErrInvalidRecoveryCodeCount     = errors.New("invalid recovery code count, must be greater than 0")
	ErrFailedToGenerateRecoveryCode = errors.New("failed to generate recovery code")
	ErrFailedToGenerateQRCode       = errors.New("failed to generate QR code")
)
