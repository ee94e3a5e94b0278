package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Recorder shapes and emits audit events into a Storage. It holds no mutable
// state and is safe for concurrent use.
type Recorder struct {
	storage Storage
	now     func() time.Time
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock overrides the timestamp source for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRecorder creates a Recorder writing to storage.
func NewRecorder(storage Storage, opts ...Option) *Recorder {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}

	r := &Recorder{
		storage: storage,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Success records a successful action.
func (r *Recorder) Success(ctx context.Context, action Action, opts ...EventOption) error {
	return r.record(ctx, action, true, "", opts)
}

// Failure records a failed action with a non-secret failure reason.
func (r *Recorder) Failure(ctx context.Context, action Action, reason string, opts ...EventOption) error {
	return r.record(ctx, action, false, reason, opts)
}

func (r *Recorder) record(ctx context.Context, action Action, success bool, reason string, opts []EventOption) error {
	event := Event{
		ID:        uuid.New(),
		Action:    action,
		Success:   success,
		Reason:    reason,
		CreatedAt: r.now(),
	}

	for _, opt := range opts {
		opt(&event)
	}

	if err := event.Validate(); err != nil {
		return err
	}

	return r.storage.Store(ctx, event)
}
