package runtime

import (
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
)

// Session is one database connection event: the store that was opened and
// the schema discovered from it. A Session is never mutated; reconnecting
// builds a new one and swaps it in.
type Session struct {
	ID          string
	DSN         string
	Store       driven.RelationalStore // nil when the connection failed
	Schema      *domain.SchemaDescription
	ConnectedAt time.Time
}

// NewSession creates a session for a store and its discovered schema
func NewSession(dsn string, store driven.RelationalStore, schema *domain.SchemaDescription) *Session {
	return &Session{
		ID:          uuid.NewString(),
		DSN:         dsn,
		Store:       store,
		Schema:      schema,
		ConnectedAt: time.Now(),
	}
}

// FailedSession records a connection attempt that produced no usable store
func FailedSession(dsn string, err error) *Session {
	return NewSession(dsn, nil, domain.SchemaError(err))
}

// Connected returns true if the session has a store and a discovered schema
func (s *Session) Connected() bool {
	return s != nil && s.Store != nil && s.Schema.Discovered()
}
