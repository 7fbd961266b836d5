package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driving"
	"github.com/custodia-labs/nlq-engine/internal/runtime"
)

// Ensure DocumentIndexer implements DocumentService
var _ driving.DocumentService = (*DocumentIndexer)(nil)

// indexSnapshot pairs a vector index with its chunk table.
// Position i in the index is chunks[i]. Snapshots are never mutated.
type indexSnapshot struct {
	index   driven.VectorIndex
	chunks  []domain.Chunk
	builtAt time.Time
}

// DocumentIndexer builds and serves the in-memory document index.
// Ingestion runs the pipeline:
//  1. Pick a normaliser by file extension (unsupported files are skipped)
//  2. Read and normalise each file (failures are logged, not fatal)
//  3. Split the text into paragraph chunks
//  4. Embed all chunks in one batch
//  5. Build a fresh index and swap it in
type DocumentIndexer struct {
	services      *runtime.Services
	normaliserReg driven.NormaliserRegistry
	pipeline      driven.PostProcessorPipeline
	newIndex      driven.VectorIndexFactory
	metrics       driven.Metrics
	readFile      func(path string) ([]byte, error)
	logger        *slog.Logger

	snapshot atomic.Pointer[indexSnapshot]
	ingestMu sync.Mutex
}

// DocumentIndexerConfig holds dependencies for DocumentIndexer.
type DocumentIndexerConfig struct {
	Services      *runtime.Services
	NormaliserReg driven.NormaliserRegistry
	Pipeline      driven.PostProcessorPipeline
	IndexFactory  driven.VectorIndexFactory
	Metrics       driven.Metrics
	ReadFile      func(path string) ([]byte, error) // defaults to os.ReadFile
	Logger        *slog.Logger
}

// NewDocumentIndexer creates a new document indexer with an empty index.
func NewDocumentIndexer(cfg DocumentIndexerConfig) *DocumentIndexer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = driven.NopMetrics{}
	}
	readFile := cfg.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}

	return &DocumentIndexer{
		services:      cfg.Services,
		normaliserReg: cfg.NormaliserReg,
		pipeline:      cfg.Pipeline,
		newIndex:      cfg.IndexFactory,
		metrics:       metrics,
		readFile:      readFile,
		logger:        logger,
	}
}

// Ingest rebuilds the index from the given files.
// Concurrent calls are serialised; searches keep using the previous
// snapshot until the new one is complete.
func (ix *DocumentIndexer) Ingest(ctx context.Context, paths []string) (*domain.IngestResult, error) {
	ix.ingestMu.Lock()
	defer ix.ingestMu.Unlock()

	start := time.Now()
	result := &domain.IngestResult{IndexedFiles: []string{}}
	var chunks []domain.Chunk

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		normaliser := ix.normaliserReg.Get(path)
		if normaliser == nil {
			ix.logger.Debug("skipping unsupported file", "path", path)
			result.Skipped = append(result.Skipped, path)
			continue
		}

		fileChunks, err := ix.extract(path, normaliser)
		if err != nil {
			ix.logger.Warn("failed to process document", "path", path, "error", err)
			result.Failed = append(result.Failed, path)
			continue
		}
		if len(fileChunks) == 0 {
			ix.logger.Debug("document has no text", "path", path)
			continue
		}

		chunks = append(chunks, fileChunks...)
		result.IndexedFiles = append(result.IndexedFiles, path)
	}

	if len(chunks) == 0 {
		ix.logger.Info("no chunks produced, index left unchanged", "files", len(paths))
		return result, nil
	}

	snap, err := ix.build(ctx, chunks)
	if err != nil {
		return nil, err
	}
	ix.snapshot.Store(snap)

	result.IndexedChunks = len(chunks)
	ix.metrics.SetIndexedChunks(len(chunks))
	ix.logger.Info("document index rebuilt",
		"files", len(result.IndexedFiles),
		"chunks", len(chunks),
		"skipped", len(result.Skipped),
		"failed", len(result.Failed),
		"duration", time.Since(start),
	)
	return result, nil
}

// extract reads one file and splits its text into chunks
func (ix *DocumentIndexer) extract(path string, normaliser driven.Normaliser) ([]domain.Chunk, error) {
	content, err := ix.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	text, err := normaliser.Normalise(content)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}

	processed := ix.pipeline.Process(text)
	chunks := make([]domain.Chunk, 0, len(processed))
	for _, pc := range processed {
		if chunk, ok := domain.NewChunk(path, pc.Content); ok {
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

// build embeds every chunk in one call and loads a fresh index
func (ix *DocumentIndexer) build(ctx context.Context, chunks []domain.Chunk) (*indexSnapshot, error) {
	embedding := ix.services.EmbeddingService()
	if embedding == nil {
		return nil, fmt.Errorf("%w: embedding service not configured", domain.ErrServiceUnavailable)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := embedding.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	index, err := ix.newIndex(len(vectors[0]))
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	if err := index.Add(vectors); err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}

	return &indexSnapshot{
		index:   index,
		chunks:  chunks,
		builtAt: time.Now(),
	}, nil
}

// Search returns the chunks nearest to the query within the relevance threshold
func (ix *DocumentIndexer) Search(ctx context.Context, query string, k int) ([]domain.DocumentHit, error) {
	if k <= 0 {
		k = domain.DefaultSearchK
	}

	snap := ix.snapshot.Load()
	if snap == nil || snap.index.Len() == 0 {
		return []domain.DocumentHit{}, nil
	}

	embedding := ix.services.EmbeddingService()
	if embedding == nil {
		return nil, fmt.Errorf("%w: embedding service not configured", domain.ErrServiceUnavailable)
	}

	vector, err := embedding.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	positions, distances, err := snap.index.Search(vector, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	hits := make([]domain.DocumentHit, 0, len(positions))
	for i, pos := range positions {
		if pos < 0 || pos >= len(snap.chunks) {
			continue
		}
		distance := float64(distances[i])
		if distance >= domain.RelevanceThreshold {
			continue
		}
		chunk := snap.chunks[pos]
		hits = append(hits, domain.DocumentHit{
			Source:   chunk.Source,
			Content:  chunk.Content,
			Distance: distance,
		})
	}
	return hits, nil
}

// Stats describes the served snapshot
func (ix *DocumentIndexer) Stats() domain.IndexStats {
	snap := ix.snapshot.Load()
	if snap == nil {
		return domain.IndexStats{}
	}
	return domain.IndexStats{
		Chunks:     len(snap.chunks),
		Dimensions: snap.index.Dimensions(),
		BuiltAt:    snap.builtAt,
	}
}
