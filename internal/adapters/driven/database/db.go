package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
)

// Supported dialects
const (
	DialectPostgres = domain.DialectPostgres
	DialectSQLite   = domain.DialectSQLite
)

// Ensure Connector implements StoreConnector
var _ driven.StoreConnector = (*Connector)(nil)

// Config holds connection pool configuration
type Config struct {
	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum lifetime of a connection
	ConnMaxLifetime time.Duration

	// ConnMaxIdleTime is the maximum idle time of a connection
	ConnMaxIdleTime time.Duration

	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,
	}
}

// Connector opens relational stores from connection strings
type Connector struct {
	cfg Config
}

// NewConnector creates a connector with the given pool configuration
func NewConnector(cfg Config) *Connector {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Connector{cfg: cfg}
}

// Target is a parsed connection string
type Target struct {
	Dialect    string
	DriverName string
	DataSource string
	InMemory   bool
}

// ParseDSN resolves the dialect and driver data source for a connection string.
//
//	postgres://... postgresql://...   lib/pq
//	sqlite:///relative.db             file relative to the working directory
//	sqlite:////abs/path.db            absolute file
//	sqlite://                         in-memory database
//	file:..., *.db, :memory:          modernc sqlite as given
func ParseDSN(dsn string) (Target, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return Target{}, fmt.Errorf("%w: connection string is required", domain.ErrInvalidInput)
	}

	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return Target{Dialect: DialectPostgres, DriverName: "postgres", DataSource: dsn}, nil

	case strings.HasPrefix(lower, "sqlite://"):
		path := dsn[len("sqlite://"):]
		if path == "" || path == "/" || path == "/:memory:" {
			return sqliteTarget(":memory:"), nil
		}
		// sqlite:///x is relative, sqlite:////x is absolute
		return sqliteTarget(strings.TrimPrefix(path, "/")), nil

	case strings.Contains(lower, "://"):
		scheme := dsn[:strings.Index(dsn, "://")]
		return Target{}, fmt.Errorf("%w: unsupported database scheme %q", domain.ErrInvalidInput, scheme)

	default:
		return sqliteTarget(dsn), nil
	}
}

func sqliteTarget(source string) Target {
	inMemory := source == ":memory:" || strings.Contains(source, "mode=memory")
	return Target{Dialect: DialectSQLite, DriverName: "sqlite", DataSource: source, InMemory: inMemory}
}

// Connect opens a pool for the DSN and verifies it with a ping
func (c *Connector) Connect(ctx context.Context, dsn string) (driven.RelationalStore, error) {
	target, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(target.DriverName, target.DataSource)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(c.cfg.MaxOpenConns)
	db.SetMaxIdleConns(c.cfg.MaxIdleConns)
	db.SetConnMaxLifetime(c.cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(c.cfg.ConnMaxIdleTime)

	// Each sqlite memory connection is its own database
	if target.InMemory {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	// Verify connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	c.cfg.Logger.Debug("database opened", "dialect", target.Dialect)
	return NewStore(db, target.Dialect), nil
}
