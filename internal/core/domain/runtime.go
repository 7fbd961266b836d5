package domain

import "sync"

// Cache backends
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// RuntimeConfig tracks which collaborators are available at runtime.
// The cache backend is fixed at startup; the capability flags change as
// services are configured and databases are (re)connected.
// Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	CacheBackend string // "memory" or "redis"

	embeddingAvailable bool
	llmAvailable       bool
	databaseConnected  bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(cacheBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		CacheBackend: cacheBackend,
	}
}

// EmbeddingAvailable returns whether embedding service is available
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// LLMAvailable returns whether LLM service is available
func (c *RuntimeConfig) LLMAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.llmAvailable
}

// DatabaseConnected returns whether the current session has a usable store
func (c *RuntimeConfig) DatabaseConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.databaseConnected
}

// SetEmbeddingAvailable updates the embedding availability flag
func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}

// SetLLMAvailable updates the LLM availability flag
func (c *RuntimeConfig) SetLLMAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.llmAvailable = available
}

// SetDatabaseConnected updates the database flag
func (c *RuntimeConfig) SetDatabaseConnected(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.databaseConnected = connected
}

// CanSearchDocuments returns true if document questions can be answered
func (c *RuntimeConfig) CanSearchDocuments() bool {
	return c.EmbeddingAvailable()
}

// CanAnswerStructured returns true if SQL questions can be answered
func (c *RuntimeConfig) CanAnswerStructured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.llmAvailable && c.databaseConnected
}

// Supports reports whether every path the query type needs is available
func (c *RuntimeConfig) Supports(t QueryType) bool {
	if t.UsesSQL() && !c.CanAnswerStructured() {
		return false
	}
	if t.UsesDocuments() && !c.CanSearchDocuments() {
		return false
	}
	return true
}
