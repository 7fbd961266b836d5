package mocks

import (
	"context"
	"sync"
)

// MockLLMService is a mock implementation of LLMService for testing
type MockLLMService struct {
	mu         sync.Mutex
	CompleteFn func(ctx context.Context, prompt string) (string, error)
	prompts    []string
	reply      string
	err        error
}

// NewMockLLMService creates a mock that answers every prompt with reply
func NewMockLLMService(reply string) *MockLLMService {
	return &MockLLMService{reply: reply}
}

func (m *MockLLMService) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	fn, reply, err := m.CompleteFn, m.reply, m.err
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt)
	}
	return reply, err
}

func (m *MockLLMService) Model() string {
	return "mock-llm"
}

func (m *MockLLMService) Ping(ctx context.Context) error {
	return nil
}

func (m *MockLLMService) Close() error {
	return nil
}

// SetError makes every following call fail with err
func (m *MockLLMService) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Prompts returns every prompt received so far
func (m *MockLLMService) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Calls returns the number of Complete calls
func (m *MockLLMService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}
