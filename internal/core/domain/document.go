package domain

import (
	"strings"
	"time"
)

// RelevanceThreshold is the exclusive upper bound on the squared L2 distance
// of a document hit. Hits at or above it are dropped.
const RelevanceThreshold = 1.0

// DefaultSearchK is the neighbour count used when a caller passes k <= 0.
const DefaultSearchK = 3

// Chunk is a paragraph of a source document, the unit of retrieval.
// Chunks are immutable once created.
type Chunk struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}

// NewChunk trims content and reports false when nothing is left.
func NewChunk(source, content string) (Chunk, bool) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Chunk{}, false
	}
	return Chunk{Source: source, Content: content}, true
}

// DocumentHit is a chunk returned by a similarity search
type DocumentHit struct {
	Source   string  `json:"source"`
	Content  string  `json:"content"`
	Distance float64 `json:"distance"`
}

// IngestResult summarises one ingestion run
type IngestResult struct {
	IndexedFiles  []string `json:"indexed_files"`
	IndexedChunks int      `json:"indexed_chunks"`
	Skipped       []string `json:"skipped,omitempty"`
	Failed        []string `json:"failed,omitempty"`
}

// Rebuilt returns true if the run replaced the index
func (r *IngestResult) Rebuilt() bool {
	return r.IndexedChunks > 0
}

// IndexStats describes the currently served index
type IndexStats struct {
	Chunks     int       `json:"chunks"`
	Dimensions int       `json:"dimensions"`
	BuiltAt    time.Time `json:"built_at,omitempty"`
}
