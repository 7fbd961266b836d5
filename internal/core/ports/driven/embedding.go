package driven

import (
	"context"
)

// EmbeddingService turns text into fixed-dimension vectors.
// Document chunks and questions must be embedded by the same service so
// their distances are comparable.
type EmbeddingService interface {
	// Embed generates embeddings for multiple texts in one call.
	// The result has one vector per input, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a question
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// Dimensions returns the embedding dimension size
	Dimensions() int

	// Model returns the model name being used
	Model() string

	// HealthCheck verifies the embedding service is available
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the embedding service
	Close() error
}
