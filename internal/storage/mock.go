package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// MockStore is a mock implementation of StateStore for testing
type MockStore struct {
	mu        sync.RWMutex
	states    map[uuid.UUID]json.RawMessage
	pingError error
}

// Ensure MockStore implements StateStore interface
var _ StateStore = (*MockStore)(nil)

// NewMockStore creates a new mock store
func NewMockStore() *MockStore {
	return &MockStore{
		states: make(map[uuid.UUID]json.RawMessage),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStore) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

func (m *MockStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStore) Close() error {
	return nil
}

func (m *MockStore) SaveMessageState(ctx context.Context, id uuid.UUID, blob json.RawMessage) error {
	if len(blob) == 0 {
		return errors.New("message state cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[id] = append(json.RawMessage(nil), blob...)
	return nil
}

func (m *MockStore) LoadMessageState(ctx context.Context, id uuid.UUID) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.states[id]
	if !ok {
		return nil, nil
	}
	return append(json.RawMessage(nil), blob...), nil
}

func (m *MockStore) DeleteMessageState(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, id)
	return nil
}
