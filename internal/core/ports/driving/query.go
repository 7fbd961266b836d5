package driving

import (
	"context"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
)

// QueryService answers natural-language questions
type QueryService interface {
	// Classify decides which retrieval path a question takes
	Classify(question string) domain.QueryType

	// GenerateStructuredQuery asks the LLM for a SQL statement against the
	// current schema
	GenerateStructuredQuery(ctx context.Context, question string) (string, error)

	// ExecuteStructuredQuery runs a statement through the safety gate and
	// then against the current database. Failures are reported in the result.
	ExecuteStructuredQuery(ctx context.Context, sql string) *domain.SQLResult

	// Process answers a question end to end, consulting the result cache.
	// It never fails; errors are carried inside the answer.
	Process(ctx context.Context, question string) *domain.QueryResult
}

// ConnectionService manages the active database connection
type ConnectionService interface {
	// Reconnect opens the database, discovers its schema and makes it the
	// current session. The result cache is cleared. Failures are reported
	// in the returned schema's Error field.
	Reconnect(ctx context.Context, connectionString string) *domain.SchemaDescription

	// Schema returns the schema of the current session
	Schema() *domain.SchemaDescription
}
