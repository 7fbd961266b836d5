package normalisers

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry implements NormaliserRegistry with priority-based selection.
// Normalisers are keyed by file extension; when several handle the same
// extension, the highest priority one is used.
type Registry struct {
	mu          sync.RWMutex
	normalisers []driven.Normaliser
}

// NewRegistry creates a new normaliser registry.
func NewRegistry() *Registry {
	return &Registry{
		normalisers: make([]driven.Normaliser, 0),
	}
}

// Register registers a normaliser.
// Normalisers are stored and later selected by priority.
func (r *Registry) Register(normaliser driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.normalisers = append(r.normalisers, normaliser)
}

// Get retrieves the best-matching normaliser for a file path or extension.
// Returns nil if no normaliser handles it.
func (r *Registry) Get(pathOrExt string) driven.Normaliser {
	matches := r.GetAll(pathOrExt)
	if len(matches) == 0 {
		return nil
	}
	return matches[0] // Already sorted by priority (highest first)
}

// GetAll retrieves all normalisers for an extension, sorted by priority (highest first).
func (r *Registry) GetAll(pathOrExt string) []driven.Normaliser {
	ext := Extension(pathOrExt)
	if ext == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []driven.Normaliser
	for _, n := range r.normalisers {
		if handlesExtension(n.SupportedTypes(), ext) {
			matches = append(matches, n)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Priority() > matches[j].Priority()
	})

	return matches
}

// List returns all registered extensions.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typeSet := make(map[string]struct{})
	for _, n := range r.normalisers {
		for _, t := range n.SupportedTypes() {
			typeSet[strings.ToLower(t)] = struct{}{}
		}
	}

	types := make([]string, 0, len(typeSet))
	for t := range typeSet {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Extension returns the lowercase extension of a path, with the leading dot.
// A bare extension such as "PDF" or ".pdf" is accepted too.
func Extension(pathOrExt string) string {
	s := strings.TrimSpace(pathOrExt)
	if s == "" {
		return ""
	}
	if ext := filepath.Ext(s); ext != "" {
		return strings.ToLower(ext)
	}
	if strings.ContainsAny(s, `/\`) {
		return ""
	}
	return "." + strings.ToLower(s)
}

func handlesExtension(supported []string, ext string) bool {
	for _, s := range supported {
		if strings.ToLower(strings.TrimSpace(s)) == ext {
			return true
		}
	}
	return false
}

// DefaultRegistry creates a registry with the built-in document readers.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(NewPlaintextNormaliser())
	r.Register(NewMarkdownNormaliser())
	r.Register(NewPDFNormaliser())
	r.Register(NewDOCXNormaliser())

	return r
}
