package driven

import (
	"context"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
)

// ResultCache memoises query results keyed by the exact question text.
// Keys are case-sensitive and not normalised.
type ResultCache interface {
	// Get returns the stored result, or nil and false on a miss
	Get(ctx context.Context, question string) (*domain.QueryResult, bool)

	// Set stores a result, replacing any previous entry
	Set(ctx context.Context, question string, result *domain.QueryResult) error

	// Clear removes every entry
	Clear(ctx context.Context) error

	// Len returns the number of live entries
	Len(ctx context.Context) int
}
