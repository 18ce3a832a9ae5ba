package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/action-stage/pkg/chat"
)

// MockGenerator is a mock implementation of Generator for testing
type MockGenerator struct {
	TextGenFunc func(ctx context.Context, req chat.TextGenRequest) (*chat.TextGenResult, error)

	// Track calls for testing
	TextGenCalls []chat.TextGenRequest

	mu sync.Mutex // protects all fields above
}

// NewMockGenerator creates a mock that answers with a fixed three-option list.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		TextGenCalls: make([]chat.TextGenRequest, 0),
	}
}

// MockMenuText is the default mock answer.
const MockMenuText = "1. Open the door\n2. Knock\n3. Leave"

// TextGen mocks text generation
func (m *MockGenerator) TextGen(ctx context.Context, req chat.TextGenRequest) (*chat.TextGenResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TextGenCalls = append(m.TextGenCalls, req)

	if m.TextGenFunc != nil {
		return m.TextGenFunc(ctx, req)
	}

	return &chat.TextGenResult{Result: MockMenuText}, nil
}

// SetResult sets up the mock to answer with text
func (m *MockGenerator) SetResult(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TextGenFunc = func(ctx context.Context, req chat.TextGenRequest) (*chat.TextGenResult, error) {
		return &chat.TextGenResult{Result: text}, nil
	}
}

// SetNoResult sets up the mock to answer with a nil result and no error
func (m *MockGenerator) SetNoResult() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TextGenFunc = func(ctx context.Context, req chat.TextGenRequest) (*chat.TextGenResult, error) {
		return nil, nil
	}
}

// SetError sets up the mock to return an error
func (m *MockGenerator) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TextGenFunc = func(ctx context.Context, req chat.TextGenRequest) (*chat.TextGenResult, error) {
		return nil, err
	}
}

// Reset clears all call tracking
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TextGenCalls = make([]chat.TextGenRequest, 0)
}

// GetCalls returns a copy of the call tracking data in a thread-safe way
func (m *MockGenerator) GetCalls() []chat.TextGenRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]chat.TextGenRequest, len(m.TextGenCalls))
	copy(calls, m.TextGenCalls)
	return calls
}
