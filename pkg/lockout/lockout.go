// Package lockout implements the brute-force lockout policy as a pure state
// transition function over an account's failure counters. The package does no
// I/O and never reads the wall clock; callers pass the current time in, which
// keeps expiry behavior deterministic in tests and leaves the atomic
// read-modify-write of stored counters to the persistence layer.
//
// A lock expires lazily: a lock timestamp in the past is treated as no lock
// at all, with no background sweep required. The failure counter itself only
// resets on a successful check or an explicit unlock, so an account that
// failed through an entire lock window re-locks on its next failure.
package lockout

import "time"

const (
	// DefaultThreshold is the number of consecutive failures that trigger a lock.
	DefaultThreshold = 5
	// DefaultDuration is how long an account stays locked.
	DefaultDuration = 15 * time.Minute
)

// State is an account's failure counters as stored alongside the account. The
// zero value means no failures and no lock.
type State struct {
	FailedCount int
	LockedUntil time.Time // zero means not locked
}

// Locked reports whether the state carries an unexpired lock.
func (s State) Locked(now time.Time) bool {
	return !s.LockedUntil.IsZero() && s.LockedUntil.After(now)
}

// RetryAfter returns how long until the lock expires, or zero when not locked.
func (s State) RetryAfter(now time.Time) time.Duration {
	if !s.Locked(now) {
		return 0
	}
	return s.LockedUntil.Sub(now)
}

// Policy holds the lockout tunables. The zero value is replaced by defaults
// via Normalize, so an unconfigured policy still behaves sensibly.
type Policy struct {
	Threshold int
	Duration  time.Duration
}

// Normalize returns a copy with defaults applied to zero-valued fields.
func (p Policy) Normalize() Policy {
	if p.Threshold <= 0 {
		p.Threshold = DefaultThreshold
	}
	if p.Duration <= 0 {
		p.Duration = DefaultDuration
	}
	return p
}

// Fail applies a failed credential or second-factor check. An unexpired lock
// leaves the state untouched; otherwise the counter increments and, once it
// reaches the threshold, the lock engages for the policy duration.
func (p Policy) Fail(s State, now time.Time) State {
	p = p.Normalize()
	s = expire(s, now)

	if s.Locked(now) {
		return s
	}

	s.FailedCount++
	if s.FailedCount >= p.Threshold {
		s.LockedUntil = now.Add(p.Duration)
	}
	return s
}

// Succeed applies a successful check: the counter resets and any stale lock
// clears.
func (p Policy) Succeed(s State, now time.Time) State {
	return State{}
}

// Unlock is the administrative reset; it clears counter and lock
// unconditionally.
func (p Policy) Unlock(s State) State {
	return State{}
}

// expire drops a lock timestamp that is already in the past. The counter is
// kept: only success resets it.
func expire(s State, now time.Time) State {
	if !s.LockedUntil.IsZero() && !s.LockedUntil.After(now) {
		s.LockedUntil = time.Time{}
	}
	return s
}
