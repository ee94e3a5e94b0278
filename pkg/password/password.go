// Package password provides a bcrypt-backed implementation of the one-way
// password hasher consumed by the authentication service, plus the constant
// dummy digest used to keep unknown-email login attempts timing-comparable to
// real ones.
package password

import (
	"crypto/rand"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrFailedToHash indicates bcrypt rejected the input, e.g. a password over
// bcrypt's 72-byte limit.
var ErrFailedToHash = errors.New("failed to hash password")

// Hasher hashes and verifies passwords with bcrypt. It precomputes a dummy
// digest at construction so callers can burn a comparable verification on
// accounts that do not exist.
type Hasher struct {
	cost        int
	dummyDigest string
}

// NewHasher creates a Hasher with the given bcrypt cost; zero or negative
// selects bcrypt.DefaultCost.
func NewHasher(cost int) (*Hasher, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}

	// Random throwaway password so the dummy digest never matches anything.
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(base64.StdEncoding.EncodeToString(buf)[:48]), cost)
	if err != nil {
		return nil, errors.Join(ErrFailedToHash, err)
	}

	return &Hasher{cost: cost, dummyDigest: string(dummy)}, nil
}

// MustNewHasher panics on construction failure, for initialization paths
// where a broken RNG should prevent startup.
func MustNewHasher(cost int) *Hasher {
	h, err := NewHasher(cost)
	if err != nil {
		panic(err)
	}
	return h
}

// Hash returns the bcrypt digest of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", errors.Join(ErrFailedToHash, err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches the digest.
func (h *Hasher) Verify(digest, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// DummyDigest returns a valid digest that matches no password, for timing
// equalization on unknown accounts.
func (h *Hasher) DummyDigest() string {
	return h.dummyDigest
}
