package resettoken

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests and single-process deployments.
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]Token
}

// NewMemoryStore creates an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]Token)}
}

// Save stores the token under its value.
func (m *MemoryStore) Save(ctx context.Context, token Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.Value] = token
	return nil
}

// Consume removes and returns the token in one step under the store lock.
func (m *MemoryStore) Consume(ctx context.Context, value string) (Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, ok := m.tokens[value]
	if !ok {
		return Token{}, ErrTokenNotFound
	}
	delete(m.tokens, value)
	return token, nil
}
