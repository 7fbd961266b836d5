package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driving"
	"github.com/custodia-labs/nlq-engine/internal/runtime"
)

// Ensure QueryRouter implements the driving ports
var (
	_ driving.QueryService      = (*QueryRouter)(nil)
	_ driving.ConnectionService = (*QueryRouter)(nil)
)

// QueryRouter answers questions by routing them to generated SQL, the
// document index, or both. Results are memoised per exact question text
// until the next reconnection.
type QueryRouter struct {
	services  *runtime.Services
	documents driving.DocumentService
	cache     driven.ResultCache
	connector driven.StoreConnector
	rules     *domain.RoutingRules
	gate      *SafetyGate
	metrics   driven.Metrics
	logger    *slog.Logger
}

// QueryRouterConfig holds dependencies for QueryRouter.
type QueryRouterConfig struct {
	Services  *runtime.Services
	Documents driving.DocumentService
	Cache     driven.ResultCache
	Connector driven.StoreConnector
	Rules     *domain.RoutingRules // defaults to DefaultRoutingRules
	Metrics   driven.Metrics
	Logger    *slog.Logger
}

// NewQueryRouter creates a new QueryRouter.
func NewQueryRouter(cfg QueryRouterConfig) *QueryRouter {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rules := cfg.Rules
	if rules == nil {
		rules = domain.DefaultRoutingRules()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = driven.NopMetrics{}
	}

	return &QueryRouter{
		services:  cfg.Services,
		documents: cfg.Documents,
		cache:     cfg.Cache,
		connector: cfg.Connector,
		rules:     rules,
		gate:      NewSafetyGate(),
		metrics:   metrics,
		logger:    logger,
	}
}

// Classify decides which retrieval path a question takes
func (r *QueryRouter) Classify(question string) domain.QueryType {
	return r.rules.Classify(question)
}

// GenerateStructuredQuery asks the LLM to translate the question into SQL.
func (r *QueryRouter) GenerateStructuredQuery(ctx context.Context, question string) (string, error) {
	session := r.services.Session()
	if session == nil || !session.Schema.Discovered() {
		return "", domain.ErrSchemaNotDiscovered
	}

	llm := r.services.LLMService()
	if llm == nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, domain.ErrServiceUnavailable)
	}

	dialect := ""
	if session.Store != nil {
		dialect = session.Store.Dialect()
	}
	prompt, err := BuildSQLPrompt(session.Schema, question, dialect)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	reply, err := llm.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	sql := ParseQueryEnvelope(reply)
	if sql == "" {
		return "", fmt.Errorf("%w: empty reply from model", domain.ErrGenerationFailed)
	}
	return sql, nil
}

// ExecuteStructuredQuery runs a statement that passes the safety gate.
func (r *QueryRouter) ExecuteStructuredQuery(ctx context.Context, sql string) *domain.SQLResult {
	session := r.services.Session()
	dialect := ""
	if session != nil && session.Store != nil {
		dialect = session.Store.Dialect()
	}

	if err := r.gate.Check(sql, dialect); err != nil {
		r.metrics.SafetyRejection()
		r.logger.Warn("statement rejected", "reason", err)
		return domain.SQLError(domain.ErrUnsafeQuery.Error())
	}

	if dialect == "" {
		return domain.SQLError(executionError(domain.ErrNoDatabase))
	}

	rows, err := session.Store.Execute(ctx, sql)
	if err != nil {
		r.logger.Warn("statement failed", "error", err)
		return domain.SQLError(executionError(err))
	}
	if rows == nil {
		rows = []domain.Row{}
	}
	return &domain.SQLResult{Rows: rows}
}

func executionError(err error) string {
	return "Error executing SQL query: " + err.Error()
}

// Process answers a question end to end. It never fails: errors from any
// path are carried in the answer.
func (r *QueryRouter) Process(ctx context.Context, question string) *domain.QueryResult {
	start := time.Now()

	if stored, ok := r.cache.Get(ctx, question); ok {
		r.metrics.CacheEvent(driven.CacheEventHit)
		if !stored.Cached {
			marked := stored.Clone()
			marked.Cached = true
			if err := r.cache.Set(ctx, question, marked); err != nil {
				r.logger.Warn("failed to mark cached result", "error", err)
			}
		}
		hit := stored.Clone()
		hit.Cached = true
		r.metrics.ObserveQuery(hit.Type, true, time.Since(start))
		r.logger.Debug("query served from cache", "type", hit.Type)
		return hit
	}
	r.metrics.CacheEvent(driven.CacheEventMiss)

	queryType := r.Classify(question)
	result := &domain.QueryResult{Query: question, Type: queryType}

	switch queryType {
	case domain.QueryTypeDocument:
		result.Documents = r.searchDocuments(ctx, question)

	case domain.QueryTypeHybrid:
		var g errgroup.Group
		g.Go(func() error {
			result.GeneratedSQL, result.SQL = r.answerStructured(ctx, question)
			return nil
		})
		g.Go(func() error {
			result.Documents = r.searchDocuments(ctx, question)
			return nil
		})
		// Both paths record failures in the result; Wait only joins them.
		g.Wait()

	default:
		result.GeneratedSQL, result.SQL = r.answerStructured(ctx, question)
	}

	result.Took = time.Since(start)
	if ctx.Err() != nil {
		// The answer may only describe the cancellation
		r.logger.Debug("request ended before the answer, not caching", "error", ctx.Err())
	} else if err := r.cache.Set(ctx, question, result.Clone()); err != nil {
		r.logger.Warn("failed to cache result", "error", err)
	}

	r.metrics.ObserveQuery(queryType, false, result.Took)
	r.logger.Info("query processed", "type", queryType, "duration", result.Took)
	return result
}

// answerStructured generates and executes SQL. A generation failure is
// reported as both the generated text and the answer error.
func (r *QueryRouter) answerStructured(ctx context.Context, question string) (string, *domain.SQLResult) {
	sql, err := r.GenerateStructuredQuery(ctx, question)
	if err != nil {
		r.logger.Warn("sql generation failed", "error", err)
		return err.Error(), domain.SQLError(err.Error())
	}
	return sql, r.ExecuteStructuredQuery(ctx, sql)
}

// searchDocuments returns the single best hit, or none on failure
func (r *QueryRouter) searchDocuments(ctx context.Context, question string) []domain.DocumentHit {
	hits, err := r.documents.Search(ctx, question, 1)
	if err != nil {
		r.logger.Warn("document search failed", "error", err)
		return []domain.DocumentHit{}
	}
	return hits
}

// Reconnect opens a database, discovers its schema and makes it the current
// session. The previous store is closed and the result cache cleared.
func (r *QueryRouter) Reconnect(ctx context.Context, connectionString string) *domain.SchemaDescription {
	next := r.openSession(ctx, connectionString)

	prev := r.services.SwapSession(next)
	if prev != nil && prev.Store != nil {
		if err := prev.Store.Close(); err != nil {
			r.logger.Warn("failed to close previous database", "error", err)
		}
	}

	if err := r.cache.Clear(ctx); err != nil {
		r.logger.Warn("failed to clear result cache", "error", err)
	}
	r.metrics.CacheEvent(driven.CacheEventClear)

	if next.Schema.Discovered() {
		r.logger.Info("database connected",
			"session_id", next.ID,
			"tables", len(next.Schema.Tables),
			"relationships", len(next.Schema.Relationships),
		)
	}
	return next.Schema
}

func (r *QueryRouter) openSession(ctx context.Context, dsn string) *runtime.Session {
	store, err := r.connector.Connect(ctx, dsn)
	if err != nil {
		r.logger.Warn("database connection failed", "error", err)
		return runtime.FailedSession(dsn, err)
	}

	schema, err := store.Describe(ctx)
	if err != nil {
		_ = store.Close()
		r.logger.Warn("schema discovery failed", "error", err)
		return runtime.FailedSession(dsn, err)
	}
	return runtime.NewSession(dsn, store, schema)
}

// Schema returns the schema of the current session
func (r *QueryRouter) Schema() *domain.SchemaDescription {
	session := r.services.Session()
	if session == nil {
		return domain.SchemaError(domain.ErrNoDatabase)
	}
	return session.Schema
}
