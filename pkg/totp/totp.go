package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hyrelab/authguard/pkg/base32x"
)

const (
	// Digits is the number of digits in a generated code (RFC 6238 standard).
	Digits = 6
	// Period is the code validity window in seconds (RFC 6238 standard).
	Period = 30
	// SecretLength is the secret size in bytes, 160 bits per RFC 4226.
	SecretLength = 20
	// DefaultWindow is the accepted clock skew in time steps on either side
	// of the current one. One step tolerates roughly ±30s of drift.
	DefaultWindow = 1
)

// Engine generates and verifies time-based one-time passwords with fixed
// RFC 6238 parameters: HMAC-SHA1, 30-second steps, 6-digit codes. It holds
// no mutable state and is safe for concurrent use.
type Engine struct {
	now    func() time.Time
	rand   io.Reader
	window int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source, used to pin the current step in tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRand overrides the random source for secret and recovery-code
// generation.
func WithRand(r io.Reader) Option {
	return func(e *Engine) {
		if r != nil {
			e.rand = r
		}
	}
}

// WithWindow sets the accepted skew in time steps. Negative values are
// ignored; zero accepts only the current step.
func WithWindow(window int) Option {
	return func(e *Engine) {
		if window >= 0 {
			e.window = window
		}
	}
}

// New creates an Engine with the system clock, crypto/rand, and the default
// skew window.
func New(opts ...Option) *Engine {
	e := &Engine{
		now:    time.Now,
		rand:   rand.Reader,
		window: DefaultWindow,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GenerateSecret draws a fresh random secret and returns it as unpadded
// base32 text suitable for authenticator apps.
func (e *Engine) GenerateSecret() (string, error) {
	secret := make([]byte, SecretLength)
	if _, err := io.ReadFull(e.rand, secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecret, err)
	}
	return base32x.Encode(secret), nil
}

// Generate returns the code for the current time step. The secret is decoded
// permissively; a garbled secret yields a code for whatever bytes survive
// decoding rather than an error, so attacker-controlled input cannot produce
// distinguishable failures.
func (e *Engine) Generate(secret string) string {
	return HOTP(base32x.Decode(secret), e.counter())
}

// Verify reports whether candidate matches the code for any time step within
// the configured skew window. Malformed candidates are false, never an error.
// Comparison is constant-time per step.
func (e *Engine) Verify(secret, candidate string) bool {
	candidate, ok := normalizeCode(candidate)
	if !ok {
		return false
	}

	key := base32x.Decode(secret)
	current := int64(e.counter())

	matched := false
	for step := current - int64(e.window); step <= current+int64(e.window); step++ {
		if step < 0 {
			continue
		}
		code := HOTP(key, uint64(step))
		if subtle.ConstantTimeCompare([]byte(code), []byte(candidate)) == 1 {
			matched = true
		}
	}
	return matched
}

func (e *Engine) counter() uint64 {
	return uint64(e.now().Unix() / Period)
}

// HOTP computes the RFC 4226 code for a key and counter: HMAC-SHA1 over the
// 8-byte big-endian counter, dynamic truncation to a 31-bit value, reduced
// modulo 10^6 and zero-padded to 6 digits.
func HOTP(key []byte, counter uint64) string {
	var msg [8]byte
	for i := 7; i >= 0; i-- {
		msg[i] = byte(counter)
		counter >>= 8
	}

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	value := uint32(sum[offset]&0x7f)<<24 |
		uint32(sum[offset+1])<<16 |
		uint32(sum[offset+2])<<8 |
		uint32(sum[offset+3])

	return fmt.Sprintf("%06d", value%1_000_000)
}

// normalizeCode strips whitespace and requires exactly six ASCII digits.
func normalizeCode(s string) (string, bool) {
	s = strings.Join(strings.Fields(s), "")
	if len(s) != Digits {
		return "", false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", false
		}
	}
	return s, true
}
