package lockout_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hyrelab/authguard/pkg/lockout"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestPolicy_Fail(t *testing.T) {
	t.Parallel()

	policy := lockout.Policy{Threshold: 5, Duration: 15 * time.Minute}

	t.Run("increments below threshold without locking", func(t *testing.T) {
		t.Parallel()
		state := lockout.State{}
		for i := 1; i < 5; i++ {
			state = policy.Fail(state, now)
			assert.Equal(t, i, state.FailedCount)
			assert.False(t, state.Locked(now))
		}
	})

	t.Run("fifth consecutive failure locks", func(t *testing.T) {
		t.Parallel()
		state := lockout.State{FailedCount: 4}
		state = policy.Fail(state, now)

		assert.Equal(t, 5, state.FailedCount)
		assert.True(t, state.Locked(now))
		assert.Equal(t, now.Add(15*time.Minute), state.LockedUntil)
		assert.Equal(t, 15*time.Minute, state.RetryAfter(now))
	})

	t.Run("failure while locked changes nothing", func(t *testing.T) {
		t.Parallel()
		locked := lockout.State{FailedCount: 5, LockedUntil: now.Add(10 * time.Minute)}
		next := policy.Fail(locked, now)

		assert.Equal(t, locked, next)
	})

	t.Run("failure after lock expiry re-locks immediately", func(t *testing.T) {
		t.Parallel()
		state := lockout.State{FailedCount: 5, LockedUntil: now.Add(-time.Second)}
		state = policy.Fail(state, now)

		assert.Equal(t, 6, state.FailedCount)
		assert.True(t, state.Locked(now))
	})
}

func TestPolicy_Succeed(t *testing.T) {
	t.Parallel()

	policy := lockout.Policy{Threshold: 5, Duration: 15 * time.Minute}

	t.Run("resets counter", func(t *testing.T) {
		t.Parallel()
		state := policy.Succeed(lockout.State{FailedCount: 3}, now)
		assert.Equal(t, lockout.State{}, state)
	})

	t.Run("clears stale lock", func(t *testing.T) {
		t.Parallel()
		stale := lockout.State{FailedCount: 5, LockedUntil: now.Add(-time.Minute)}
		state := policy.Succeed(stale, now)

		assert.Equal(t, lockout.State{}, state)
		assert.False(t, state.Locked(now))
	})
}

func TestPolicy_Unlock(t *testing.T) {
	t.Parallel()

	policy := lockout.Policy{}
	locked := lockout.State{FailedCount: 7, LockedUntil: now.Add(time.Hour)}

	assert.Equal(t, lockout.State{}, policy.Unlock(locked))
}

func TestState_LazyExpiry(t *testing.T) {
	t.Parallel()

	state := lockout.State{FailedCount: 5, LockedUntil: now}

	assert.False(t, state.Locked(now), "lock timestamp equal to now means expired")
	assert.True(t, state.Locked(now.Add(-time.Second)))
	assert.Zero(t, state.RetryAfter(now))
}

func TestPolicy_InterruptedFailureStreakNeverLocks(t *testing.T) {
	t.Parallel()

	policy := lockout.Policy{Threshold: 5, Duration: 15 * time.Minute}
	state := lockout.State{}

	for n := 0; n < 3; n++ {
		state = policy.Fail(state, now)
	}
	state = policy.Succeed(state, now)
	for n := 0; n < 3; n++ {
		state = policy.Fail(state, now)
	}

	assert.Equal(t, 3, state.FailedCount)
	assert.False(t, state.Locked(now))
}

func TestPolicy_NormalizeDefaults(t *testing.T) {
	t.Parallel()

	policy := lockout.Policy{}.Normalize()
	assert.Equal(t, lockout.DefaultThreshold, policy.Threshold)
	assert.Equal(t, lockout.DefaultDuration, policy.Duration)

	// Zero-valued policy still locks at the default threshold.
	state := lockout.State{FailedCount: lockout.DefaultThreshold - 1}
	state = lockout.Policy{}.Fail(state, now)
	assert.True(t, state.Locked(now))
}
