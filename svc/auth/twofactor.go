package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/hyrelab/authguard/pkg/audit"
	"github.com/hyrelab/authguard/pkg/totp"
)

// TwoFactorEnrollment is the material generated when an account starts
// two-factor setup. Nothing is persisted until the user proves possession of
// the secret via ConfirmTwoFactor; the caller holds this server-side in the
// meantime. Secret and RecoveryCodes must never be logged.
type TwoFactorEnrollment struct {
	Secret        string
	RecoveryCodes []string
	URI           string // otpauth URI for manual entry
	QRCode        string // the same URI as a PNG data URI
}

// BeginTwoFactorEnrollment generates a fresh secret, recovery codes, and the
// onboarding URI/QR for the account.
func (s *Service) BeginTwoFactorEnrollment(ctx context.Context, accountID uuid.UUID) (*TwoFactorEnrollment, error) {
	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	secret, err := s.totp.GenerateSecret()
	if err != nil {
		return nil, err
	}
	codes, err := s.totp.GenerateRecoveryCodes(s.recoveryCodeCount())
	if err != nil {
		return nil, err
	}

	params := totp.Params{
		Secret:      secret,
		AccountName: account.Email,
		Issuer:      s.issuer(),
	}
	uri, err := totp.URI(params)
	if err != nil {
		return nil, err
	}
	qr, err := totp.QRCodeDataURI(params)
	if err != nil {
		return nil, err
	}

	return &TwoFactorEnrollment{
		Secret:        secret,
		RecoveryCodes: codes,
		URI:           uri,
		QRCode:        qr,
	}, nil
}

// ConfirmTwoFactor verifies one code against the pending enrollment and only
// then persists the enabled flag, secret, and recovery codes together, so the
// secret-iff-enabled invariant never breaks.
func (s *Service) ConfirmTwoFactor(ctx context.Context, accountID uuid.UUID, enrollment *TwoFactorEnrollment, code, originAddress, userAgent string) error {
	origin := audit.WithOrigin(originAddress, userAgent)

	if enrollment == nil || !s.totp.Verify(enrollment.Secret, code) {
		s.recordFailure(ctx, audit.ActionTwoFactorEnabled, "invalid_code", audit.WithAccount(accountID), origin)
		return ErrInvalidTwoFactorCode
	}

	if err := s.store.UpdateTwoFactor(ctx, accountID, true, enrollment.Secret, enrollment.RecoveryCodes); err != nil {
		return err
	}

	s.recordSuccess(ctx, audit.ActionTwoFactorEnabled, audit.WithAccount(accountID), origin)
	return nil
}

// DisableTwoFactor turns the second factor off after a password re-check.
// The secret and recovery codes are cleared together with the flag.
func (s *Service) DisableTwoFactor(ctx context.Context, accountID uuid.UUID, password, originAddress, userAgent string) error {
	origin := audit.WithOrigin(originAddress, userAgent)

	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(account.PasswordDigest, password) {
		s.recordFailure(ctx, audit.ActionTwoFactorDisabled, "invalid_password", audit.WithAccount(accountID), origin)
		return ErrInvalidPassword
	}

	if err := s.store.UpdateTwoFactor(ctx, accountID, false, "", nil); err != nil {
		return err
	}

	s.recordSuccess(ctx, audit.ActionTwoFactorDisabled, audit.WithAccount(accountID), origin)
	return nil
}

func (s *Service) recoveryCodeCount() int {
	if s.cfg.RecoveryCodeCount > 0 {
		return s.cfg.RecoveryCodeCount
	}
	return totp.DefaultRecoveryCodeCount
}

func (s *Service) issuer() string {
	if s.cfg.Issuer != "" {
		return s.cfg.Issuer
	}
	return "authguard"
}
