package audit

import (
	"context"
	"sync"
)

// Storage persists audit events. Events are append-only: implementations
// never update or delete records on behalf of this package.
type Storage interface {
	Store(ctx context.Context, events ...Event) error
}

// MemoryStorage is an in-memory append-only Storage for tests.
type MemoryStorage struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store appends the events.
func (m *MemoryStorage) Store(ctx context.Context, events ...Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

// Events returns a copy of everything stored so far.
func (m *MemoryStorage) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}
