package totp

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultRecoveryCodeCount is the number of backup codes issued per
// enrollment.
const DefaultRecoveryCodeCount = 8

// GenerateRecoveryCodes creates single-use backup codes in XXXX-XXXX format:
// two independently-random 4-character uppercase hex groups joined by a
// hyphen. Codes are not derived from the TOTP secret, so rotating the secret
// does not invalidate them.
func (e *Engine) GenerateRecoveryCodes(count int) ([]string, error) {
	if count < 1 {
		return nil, ErrInvalidRecoveryCodeCount
	}

	codes := make([]string, count)
	for i := 0; i < count; i++ {
		buf := make([]byte, 4)
		if _, err := io.ReadFull(e.rand, buf); err != nil {
			return nil, errors.Join(ErrFailedToGenerateRecoveryCode, err)
		}
		codes[i] = fmt.Sprintf("%02X%02X-%02X%02X", buf[0], buf[1], buf[2], buf[3])
	}
	return codes, nil
}

// VerifyAndConsume checks candidate against stored codes and, on a match,
// returns the stored list with that single entry removed. Matching is
// case-insensitive, ignores whitespace and hyphens, and compares every entry
// in constant time. Returns (nil, false) when no code matches; the caller
// must persist the returned list so a consumed code cannot be replayed.
func VerifyAndConsume(candidate string, stored []string) ([]string, bool) {
	normalized := normalizeRecoveryCode(candidate)
	if normalized == "" {
		return nil, false
	}

	// Compare against every entry so verification time does not depend on
	// the position of the matching code.
	matched := -1
	for i, code := range stored {
		if subtle.ConstantTimeCompare([]byte(normalizeRecoveryCode(code)), []byte(normalized)) == 1 && matched == -1 {
			matched = i
		}
	}
	if matched == -1 {
		return nil, false
	}

	remaining := make([]string, 0, len(stored)-1)
	remaining = append(remaining, stored[:matched]...)
	remaining = append(remaining, stored[matched+1:]...)
	return remaining, true
}

// normalizeRecoveryCode uppercases and strips whitespace and hyphens.
func normalizeRecoveryCode(s string) string {
	s = strings.Join(strings.Fields(s), "")
	s = strings.ReplaceAll(s, "-", "")
	return strings.ToUpper(s)
}
