package ai

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
)

// Ensure LocalEmbedding implements EmbeddingService
var _ driven.EmbeddingService = (*LocalEmbedding)(nil)

// LocalEmbedding is an offline bag-of-words embedder. Each lowercased
// token is hashed into one of a fixed number of buckets and the counts are
// L2-normalised, so texts sharing words are close in squared L2 distance
// and texts with no words in common are about 2 apart.
type LocalEmbedding struct {
	dimensions int
}

// NewLocalEmbedding creates a hashing embedder. dimensions <= 0 uses the default.
func NewLocalEmbedding(dimensions int) *LocalEmbedding {
	if dimensions <= 0 {
		dimensions = domain.DefaultLocalDimensions
	}
	return &LocalEmbedding{dimensions: dimensions}
}

// Embed embeds each text independently
func (e *LocalEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

// EmbedQuery embeds a question with the same model as documents
func (e *LocalEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.vector(query), nil
}

func (e *LocalEmbedding) Dimensions() int {
	return e.dimensions
}

func (e *LocalEmbedding) Model() string {
	return domain.DefaultLocalEmbeddingModel
}

func (e *LocalEmbedding) HealthCheck(ctx context.Context) error {
	return nil
}

func (e *LocalEmbedding) Close() error {
	return nil
}

func (e *LocalEmbedding) vector(text string) []float32 {
	v := make([]float32, e.dimensions)
	for _, token := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		v[h.Sum32()%uint32(e.dimensions)]++
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v
}

// tokenize splits on anything that is not a letter or digit
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
