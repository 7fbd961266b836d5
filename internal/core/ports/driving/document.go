package driving

import (
	"context"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
)

// DocumentService ingests files into the document index and searches it
type DocumentService interface {
	// Ingest reads the given files, rebuilds the index from their paragraphs
	// and replaces the served index. Unsupported files are skipped and
	// unreadable files are logged; neither fails the call. When no chunks
	// are produced the current index is left untouched.
	Ingest(ctx context.Context, paths []string) (*domain.IngestResult, error)

	// Search returns up to k hits with squared L2 distance below the
	// relevance threshold, nearest first. k <= 0 uses the default.
	// A missing index yields an empty result.
	Search(ctx context.Context, query string, k int) ([]domain.DocumentHit, error)

	// Stats describes the currently served index
	Stats() domain.IndexStats
}
