package mocks

import (
	"path/filepath"
	"strings"

	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
)

// MockNormaliser is a mock implementation of Normaliser for testing
type MockNormaliser struct {
	SupportedTypesFn func() []string
	PriorityFn       func() int
	NormaliseFn      func(content []byte) (string, error)
}

func NewMockNormaliser() *MockNormaliser {
	return &MockNormaliser{}
}

func (m *MockNormaliser) Normalise(content []byte) (string, error) {
	if m.NormaliseFn != nil {
		return m.NormaliseFn(content)
	}
	return string(content), nil
}

func (m *MockNormaliser) SupportedTypes() []string {
	if m.SupportedTypesFn != nil {
		return m.SupportedTypesFn()
	}
	return []string{".txt"}
}

func (m *MockNormaliser) Priority() int {
	if m.PriorityFn != nil {
		return m.PriorityFn()
	}
	return 100
}

// MockNormaliserRegistry is a mock implementation of NormaliserRegistry for testing.
// It serves one normaliser for the extensions it declares.
type MockNormaliserRegistry struct {
	GetFn      func(pathOrExt string) driven.Normaliser
	normaliser driven.Normaliser
}

func NewMockNormaliserRegistry() *MockNormaliserRegistry {
	return &MockNormaliserRegistry{
		normaliser: NewMockNormaliser(),
	}
}

func (m *MockNormaliserRegistry) Get(pathOrExt string) driven.Normaliser {
	if m.GetFn != nil {
		return m.GetFn(pathOrExt)
	}
	if m.normaliser == nil {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(pathOrExt))
	if ext == "" {
		ext = strings.ToLower(pathOrExt)
	}
	for _, t := range m.normaliser.SupportedTypes() {
		if t == ext {
			return m.normaliser
		}
	}
	return nil
}

func (m *MockNormaliserRegistry) GetAll(pathOrExt string) []driven.Normaliser {
	if n := m.Get(pathOrExt); n != nil {
		return []driven.Normaliser{n}
	}
	return nil
}

func (m *MockNormaliserRegistry) Register(normaliser driven.Normaliser) {
	m.normaliser = normaliser
}

// List returns all registered extensions
func (m *MockNormaliserRegistry) List() []string {
	if m.normaliser != nil {
		return m.normaliser.SupportedTypes()
	}
	return []string{}
}
