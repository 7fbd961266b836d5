package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
)

// MockRelationalStore is a mock implementation of RelationalStore for testing
type MockRelationalStore struct {
	mu        sync.Mutex
	ExecuteFn func(ctx context.Context, query string) ([]domain.Row, error)
	Schema    *domain.SchemaDescription
	executed  []string
	closed    bool
}

// NewMockRelationalStore creates a store that returns schema from Describe
func NewMockRelationalStore(schema *domain.SchemaDescription) *MockRelationalStore {
	return &MockRelationalStore{Schema: schema}
}

func (m *MockRelationalStore) Execute(ctx context.Context, query string) ([]domain.Row, error) {
	m.mu.Lock()
	m.executed = append(m.executed, query)
	fn := m.ExecuteFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, query)
	}
	return []domain.Row{}, nil
}

func (m *MockRelationalStore) Describe(ctx context.Context) (*domain.SchemaDescription, error) {
	if m.Schema == nil {
		return domain.NewSchemaDescription(), nil
	}
	return m.Schema, nil
}

func (m *MockRelationalStore) Dialect() string {
	return "mock"
}

func (m *MockRelationalStore) Ping(ctx context.Context) error {
	return nil
}

func (m *MockRelationalStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Executed returns every statement passed to Execute
func (m *MockRelationalStore) Executed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.executed...)
}

// Closed reports whether Close was called
func (m *MockRelationalStore) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// MockStoreConnector is a mock implementation of StoreConnector for testing
type MockStoreConnector struct {
	ConnectFn func(ctx context.Context, dsn string) (driven.RelationalStore, error)
}

func (m *MockStoreConnector) Connect(ctx context.Context, dsn string) (driven.RelationalStore, error) {
	if m.ConnectFn != nil {
		return m.ConnectFn(ctx, dsn)
	}
	return NewMockRelationalStore(nil), nil
}
