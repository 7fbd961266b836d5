package driven

import (
	"context"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
)

// RelationalStore is a connected SQL database
type RelationalStore interface {
	// Execute runs a read-only statement and returns every row.
	// An empty result set is returned as an empty, non-nil slice.
	Execute(ctx context.Context, query string) ([]domain.Row, error)

	// Describe introspects tables, columns and foreign keys
	Describe(ctx context.Context) (*domain.SchemaDescription, error)

	// Dialect returns the SQL dialect name ("postgres" or "sqlite")
	Dialect() string

	// Ping verifies the connection is alive
	Ping(ctx context.Context) error

	// Close releases the underlying connection pool
	Close() error
}

// StoreConnector opens relational stores from connection strings
type StoreConnector interface {
	// Connect opens and verifies a store for the DSN
	Connect(ctx context.Context, dsn string) (RelationalStore, error)
}
