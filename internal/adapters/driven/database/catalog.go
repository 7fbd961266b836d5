package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
)

// catalog lists the queries that introspect one dialect
type catalog interface {
	tables(ctx context.Context, db *sql.DB) ([]string, error)
	columns(ctx context.Context, db *sql.DB, table string) ([]domain.Column, error)
	foreignKeys(ctx context.Context, db *sql.DB, table string) ([]domain.Relationship, error)
}

// describe builds a full schema description, tables in name order
func describe(ctx context.Context, db *sql.DB, c catalog) (*domain.SchemaDescription, error) {
	tables, err := c.tables(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	schema := domain.NewSchemaDescription()
	schema.Tables = tables
	for _, table := range tables {
		cols, err := c.columns(ctx, db, table)
		if err != nil {
			return nil, fmt.Errorf("failed to list columns of %s: %w", table, err)
		}
		schema.Columns[table] = cols

		fks, err := c.foreignKeys(ctx, db, table)
		if err != nil {
			return nil, fmt.Errorf("failed to list foreign keys of %s: %w", table, err)
		}
		schema.Relationships = append(schema.Relationships, fks...)
	}
	return schema, nil
}

func queryStrings(ctx context.Context, db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type sqliteCatalog struct{}

func (sqliteCatalog) tables(ctx context.Context, db *sql.DB) ([]string, error) {
	return queryStrings(ctx, db, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
}

func (sqliteCatalog) columns(ctx context.Context, db *sql.DB, table string) ([]domain.Column, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, type FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := []domain.Column{}
	for rows.Next() {
		var col domain.Column
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, err
		}
		col.Type = strings.ToUpper(col.Type)
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

func (sqliteCatalog) foreignKeys(ctx context.Context, db *sql.DB, table string) ([]domain.Relationship, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT "table", "from", "to" FROM pragma_foreign_key_list(?)
		WHERE seq = 0
		ORDER BY id
	`, table)
	if err != nil {
		return nil, err
	}

	var fks []domain.Relationship
	for rows.Next() {
		var to sql.NullString
		rel := domain.Relationship{FromTable: table}
		if err := rows.Scan(&rel.ToTable, &rel.FromColumn, &to); err != nil {
			rows.Close()
			return nil, err
		}
		rel.ToColumn = to.String
		fks = append(fks, rel)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// REFERENCES t without a column list targets t's primary key
	for i := range fks {
		if fks[i].ToColumn != "" {
			continue
		}
		pk, err := queryStrings(ctx, db, `SELECT name FROM pragma_table_info(?) WHERE pk = 1`, fks[i].ToTable)
		if err != nil {
			return nil, err
		}
		if len(pk) > 0 {
			fks[i].ToColumn = pk[0]
		}
	}
	return fks, nil
}

type postgresCatalog struct{}

func (postgresCatalog) tables(ctx context.Context, db *sql.DB) ([]string, error) {
	return queryStrings(ctx, db, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
}

func (postgresCatalog) columns(ctx context.Context, db *sql.DB, table string) ([]domain.Column, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT column_name, data_type FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position
	`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := []domain.Column{}
	for rows.Next() {
		var col domain.Column
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, err
		}
		col.Type = strings.ToUpper(col.Type)
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

func (postgresCatalog) foreignKeys(ctx context.Context, db *sql.DB, table string) ([]domain.Relationship, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT kcu.column_name, ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON tc.constraint_name = ccu.constraint_name AND tc.table_schema = ccu.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = current_schema()
			AND tc.table_name = $1
			AND kcu.ordinal_position = 1
		ORDER BY tc.constraint_name
	`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []domain.Relationship
	for rows.Next() {
		rel := domain.Relationship{FromTable: table}
		if err := rows.Scan(&rel.FromColumn, &rel.ToTable, &rel.ToColumn); err != nil {
			return nil, err
		}
		fks = append(fks, rel)
	}
	return fks, rows.Err()
}
