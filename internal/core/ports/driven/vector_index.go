package driven

// VectorIndex is an exact nearest-neighbour index over fixed-dimension vectors.
// Vectors are addressed by insertion position, starting at zero.
// An index is built once and then only read; callers replace it rather
// than mutate it while it is being searched.
type VectorIndex interface {
	// Add appends vectors. Every vector must have Dimensions() entries.
	Add(vectors [][]float32) error

	// Search returns the positions and squared L2 distances of the k nearest
	// vectors, nearest first. Fewer than k results are returned when the
	// index holds fewer vectors.
	Search(vector []float32, k int) ([]int, []float32, error)

	// Len returns the number of stored vectors
	Len() int

	// Dimensions returns the vector size
	Dimensions() int
}

// VectorIndexFactory creates an empty index for the given dimension
type VectorIndexFactory func(dimensions int) (VectorIndex, error)
