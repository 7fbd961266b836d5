package driven

import (
	"time"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
)

// Cache events reported to Metrics
const (
	CacheEventHit   = "hit"
	CacheEventMiss  = "miss"
	CacheEventClear = "clear"
)

// Metrics receives engine measurements
type Metrics interface {
	// ObserveQuery records one answered question
	ObserveQuery(queryType domain.QueryType, cached bool, took time.Duration)

	// CacheEvent records a cache hit, miss or clear
	CacheEvent(event string)

	// SetIndexedChunks records the size of the served document index
	SetIndexedChunks(n int)

	// SafetyRejection records a statement refused by the safety gate
	SafetyRejection()
}

// NopMetrics discards every measurement
type NopMetrics struct{}

func (NopMetrics) ObserveQuery(domain.QueryType, bool, time.Duration) {}
func (NopMetrics) CacheEvent(string)                                 {}
func (NopMetrics) SetIndexedChunks(int)                              {}
func (NopMetrics) SafetyRejection()                                  {}
