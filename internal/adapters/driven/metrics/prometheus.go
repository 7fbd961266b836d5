// Package metrics exports engine measurements in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
)

// Ensure Exporter implements driven.Metrics
var _ driven.Metrics = (*Exporter)(nil)

const namespace = "nlq"

// Exporter records query, cache and index metrics on a private registry.
type Exporter struct {
	registry *prometheus.Registry

	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	cacheEvents   *prometheus.CounterVec
	indexedChunks prometheus.Gauge
	rejections    prometheus.Counter
}

// Config configures the exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default exporter configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	}
}

// NewExporter creates and registers the engine metrics.
func NewExporter(cfg Config) *Exporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &Exporter{registry: registry}

	e.queries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of answered questions",
		},
		[]string{"type", "cached"},
	)

	e.queryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Time to answer a question in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"type"},
	)

	e.cacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Result cache hits, misses and clears",
		},
		[]string{"event"},
	)

	e.indexedChunks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ingest_chunks",
			Help:      "Number of chunks in the served document index",
		},
	)

	e.rejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "safety_rejections_total",
			Help:      "Statements refused by the safety gate",
		},
	)

	registry.MustRegister(
		e.queries,
		e.queryDuration,
		e.cacheEvents,
		e.indexedChunks,
		e.rejections,
	)

	return e
}

// ObserveQuery records one answered question
func (e *Exporter) ObserveQuery(queryType domain.QueryType, cached bool, took time.Duration) {
	e.queries.WithLabelValues(string(queryType), strconv.FormatBool(cached)).Inc()
	e.queryDuration.WithLabelValues(string(queryType)).Observe(took.Seconds())
}

// CacheEvent records a cache hit, miss or clear
func (e *Exporter) CacheEvent(event string) {
	e.cacheEvents.WithLabelValues(event).Inc()
}

// SetIndexedChunks records the size of the served index
func (e *Exporter) SetIndexedChunks(n int) {
	e.indexedChunks.Set(float64(n))
}

// SafetyRejection records a refused statement
func (e *Exporter) SafetyRejection() {
	e.rejections.Inc()
}

// Handler returns the HTTP handler for the metrics endpoint.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}
