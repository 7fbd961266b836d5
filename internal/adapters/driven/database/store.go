package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
)

// Ensure Store implements RelationalStore
var _ driven.RelationalStore = (*Store)(nil)

// Store is a relational store backed by a database/sql pool
type Store struct {
	db      *sql.DB
	dialect string
	catalog catalog
}

// NewStore wraps an open pool. The dialect selects the schema catalog.
func NewStore(db *sql.DB, dialect string) *Store {
	var c catalog = sqliteCatalog{}
	if dialect == DialectPostgres {
		c = postgresCatalog{}
	}
	return &Store{db: db, dialect: dialect, catalog: c}
}

// Execute runs a statement and materialises every row
func (s *Store) Execute(ctx context.Context, query string) ([]domain.Row, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	result := []domain.Row{}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(domain.Row, len(columns))
		for i, col := range columns {
			row[col] = normaliseValue(values[i])
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// normaliseValue converts driver values into JSON-friendly ones
func normaliseValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// Describe introspects tables, columns and foreign keys
func (s *Store) Describe(ctx context.Context) (*domain.SchemaDescription, error) {
	return describe(ctx, s.db, s.catalog)
}

// Dialect returns the SQL dialect name
func (s *Store) Dialect() string {
	return s.dialect
}

// Ping checks if the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool
func (s *Store) Close() error {
	return s.db.Close()
}
