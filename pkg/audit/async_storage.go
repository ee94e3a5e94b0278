package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// AsyncOptions tunes the buffering behavior of AsyncStorage. Zero values get
// defaults suited to typical login traffic.
type AsyncOptions struct {
	BufferSize     int           // max events queued in memory before Store starts rejecting
	BatchSize      int           // target events per flush
	FlushInterval  time.Duration // max time a partial batch waits before flushing
	StorageTimeout time.Duration // per-flush deadline against the inner storage
	Logger         *slog.Logger  // receives flush failures; defaults to slog.Default()
}

func (o AsyncOptions) withDefaults() AsyncOptions {
	if o.BufferSize <= 0 {
		o.BufferSize = 1000
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 100
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = 100 * time.Millisecond
	}
	if o.StorageTimeout <= 0 {
		o.StorageTimeout = 5 * time.Second
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// AsyncStorage decorates a Storage with a buffered background writer so audit
// emission never blocks the login path on slow storage. Events are batched;
// flush failures are reported to the configured slog logger because the
// originating request has already returned.
type AsyncStorage struct {
	inner Storage
	opts  AsyncOptions

	mu     sync.RWMutex
	closed bool
	ch     chan Event
	done   chan struct{}
}

// NewAsyncStorage wraps inner and starts the background writer.
func NewAsyncStorage(inner Storage, opts AsyncOptions) *AsyncStorage {
	if inner == nil {
		panic("audit: inner storage cannot be nil")
	}

	opts = opts.withDefaults()
	s := &AsyncStorage{
		inner: inner,
		opts:  opts,
		ch:    make(chan Event, opts.BufferSize),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

// Store queues the events. A full buffer returns ErrBufferFull rather than
// blocking the caller.
func (s *AsyncStorage) Store(ctx context.Context, events ...Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStorageClosed
	}

	for _, event := range events {
		select {
		case s.ch <- event:
		default:
			return ErrBufferFull
		}
	}
	return nil
}

// Close stops accepting events, flushes what is queued, and waits for the
// writer to finish or ctx to expire.
func (s *AsyncStorage) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AsyncStorage) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.opts.FlushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, s.opts.BatchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.StorageTimeout)
		if err := s.inner.Store(ctx, batch...); err != nil {
			s.opts.Logger.Error("audit flush failed",
				slog.Int("events", len(batch)),
				slog.Any("error", err),
			)
		}
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case event, ok := <-s.ch:
			if !ok {
				flush()
				return
			}
			batch = append(batch, event)
			if len(batch) >= s.opts.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
