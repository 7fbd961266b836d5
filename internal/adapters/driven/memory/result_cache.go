package memory

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
)

// Ensure ResultCache implements driven.ResultCache
var _ driven.ResultCache = (*ResultCache)(nil)

// Cache defaults
const (
	DefaultCapacity = 1000
	DefaultTTL      = time.Hour
)

// ResultCache is a bounded in-process result cache with LRU eviction and
// a per-entry TTL. Results are copied on the way in and out.
type ResultCache struct {
	lru      *expirable.LRU[string, *domain.QueryResult]
	capacity int
	ttl      time.Duration
}

// NewResultCache creates a cache. Non-positive values use the defaults.
func NewResultCache(capacity int, ttl time.Duration) *ResultCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResultCache{
		lru:      expirable.NewLRU[string, *domain.QueryResult](capacity, nil, ttl),
		capacity: capacity,
		ttl:      ttl,
	}
}

// Get retrieves a result and marks it most recently used
func (c *ResultCache) Get(ctx context.Context, question string) (*domain.QueryResult, bool) {
	result, ok := c.lru.Get(question)
	if !ok {
		return nil, false
	}
	return result.Clone(), true
}

// Set stores a result, refreshing its TTL
func (c *ResultCache) Set(ctx context.Context, question string, result *domain.QueryResult) error {
	if result == nil {
		return domain.ErrInvalidInput
	}
	c.lru.Add(question, result.Clone())
	return nil
}

// Clear removes all entries
func (c *ResultCache) Clear(ctx context.Context) error {
	c.lru.Purge()
	return nil
}

// Len returns the number of unexpired entries
func (c *ResultCache) Len(ctx context.Context) int {
	// Keys skips entries that have expired but not yet been reaped
	return len(c.lru.Keys())
}

// Capacity returns the maximum number of entries
func (c *ResultCache) Capacity() int {
	return c.capacity
}
