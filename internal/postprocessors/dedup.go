package postprocessors

import (
	"strings"

	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
)

// Deduplicator removes repeated chunks within one document.
// Comparison is case-insensitive on trimmed content; the first occurrence wins.
type Deduplicator struct{}

// Verify interface compliance
var _ driven.PostProcessor = (*Deduplicator)(nil)

// NewDeduplicator creates a new deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Process removes duplicate chunks.
func (d *Deduplicator) Process(chunks []driven.Chunk) []driven.Chunk {
	if len(chunks) <= 1 {
		return chunks
	}

	seen := make(map[string]bool, len(chunks))
	result := make([]driven.Chunk, 0, len(chunks))

	for _, chunk := range chunks {
		key := strings.ToLower(strings.TrimSpace(chunk.Content))
		if seen[key] {
			continue
		}
		seen[key] = true

		newChunk := chunk
		newChunk.Position = len(result)
		result = append(result, newChunk)
	}

	return result
}

// Name returns the processor name.
func (d *Deduplicator) Name() string {
	return "deduplicator"
}

// Order returns 10 - deduplicator runs after trimming.
func (d *Deduplicator) Order() int {
	return 10
}
