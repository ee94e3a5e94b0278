package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// challengePayload binds a partially-authenticated login attempt to an
// account. The token is handed to the client after a correct password on a
// two-factor account and must come back with the code. The nonce identifies
// the server-held marker that makes the challenge single-use.
type challengePayload struct {
	AccountID uuid.UUID `json:"aid"`
	Nonce     string    `json:"jti"`
	ExpiresAt int64     `json:"exp"`
}

// generateChallenge signs the payload as base64url(JSON).base64url(HMAC).
// The signature is full-length HMAC-SHA256: this token substitutes for a
// verified password, so it gets no truncation.
func generateChallenge(secret string, accountID uuid.UUID, nonce string, expiresAt time.Time) (string, error) {
	if secret == "" {
		return "", ErrMissingChallengeSecret
	}

	data, err := json.Marshal(challengePayload{AccountID: accountID, Nonce: nonce, ExpiresAt: expiresAt.Unix()})
	if err != nil {
		return "", err
	}

	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	sig := h.Sum(nil)

	return base64.RawURLEncoding.EncodeToString(data) + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// parseChallenge verifies the signature and expiry and returns the bound
// account id and marker nonce. Every failure collapses into
// ErrChallengeInvalid.
func parseChallenge(secret, token string, now time.Time) (uuid.UUID, string, error) {
	if secret == "" {
		return uuid.Nil, "", ErrMissingChallengeSecret
	}

	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return uuid.Nil, "", ErrChallengeInvalid
	}

	data, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return uuid.Nil, "", ErrChallengeInvalid
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return uuid.Nil, "", ErrChallengeInvalid
	}

	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	if subtle.ConstantTimeCompare(sig, h.Sum(nil)) != 1 {
		return uuid.Nil, "", ErrChallengeInvalid
	}

	var payload challengePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return uuid.Nil, "", ErrChallengeInvalid
	}
	if payload.AccountID == uuid.Nil || payload.Nonce == "" || !time.Unix(payload.ExpiresAt, 0).After(now) {
		return uuid.Nil, "", ErrChallengeInvalid
	}

	return payload.AccountID, payload.Nonce, nil
}
