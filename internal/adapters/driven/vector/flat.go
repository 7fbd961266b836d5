package vector

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.VectorIndex        = (*FlatL2)(nil)
	_ driven.VectorIndexFactory = NewFlatL2
)

// FlatL2 is an exact nearest-neighbour index that scores every stored
// vector by squared Euclidean distance. Vectors are stored contiguously.
// It is not safe for concurrent Add and Search; the indexer builds it
// fully before publishing it.
type FlatL2 struct {
	dim  int
	data []float32
}

// NewFlatL2 creates an empty index for vectors of the given size.
func NewFlatL2(dimensions int) (driven.VectorIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %d", domain.ErrInvalidInput, dimensions)
	}
	return &FlatL2{dim: dimensions}, nil
}

// Add appends vectors in order. Either every vector is added or none is.
func (f *FlatL2) Add(vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != f.dim {
			return fmt.Errorf("%w: vector %d has %d dimensions, index has %d",
				domain.ErrDimensionMismatch, i, len(v), f.dim)
		}
	}

	grown := make([]float32, len(f.data), len(f.data)+len(vectors)*f.dim)
	copy(grown, f.data)
	for _, v := range vectors {
		grown = append(grown, v...)
	}
	f.data = grown
	return nil
}

// Search returns up to k positions ordered by ascending squared distance.
// Ties keep insertion order.
func (f *FlatL2) Search(query []float32, k int) ([]int, []float32, error) {
	if len(query) != f.dim {
		return nil, nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), f.dim)
	}

	n := f.Len()
	if k <= 0 || n == 0 {
		return []int{}, []float32{}, nil
	}
	if k > n {
		k = n
	}

	type scored struct {
		pos  int
		dist float32
	}
	scores := make([]scored, n)
	for i := 0; i < n; i++ {
		scores[i] = scored{pos: i, dist: squaredL2(query, f.data[i*f.dim:(i+1)*f.dim])}
	}
	sort.SliceStable(scores, func(a, b int) bool { return scores[a].dist < scores[b].dist })

	positions := make([]int, k)
	distances := make([]float32, k)
	for i := 0; i < k; i++ {
		positions[i] = scores[i].pos
		distances[i] = scores[i].dist
	}
	return positions, distances, nil
}

// Len returns the number of stored vectors
func (f *FlatL2) Len() int {
	return len(f.data) / f.dim
}

// Dimensions returns the vector size
func (f *FlatL2) Dimensions() int {
	return f.dim
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
