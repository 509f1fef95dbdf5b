// Package vector provides an exact nearest-neighbor index over document chunks.
package vector

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/paperstack/askdoc/internal/models"
	"github.com/paperstack/askdoc/pkg/utils"
)

// ErrDimensionMismatch is returned when a vector's length disagrees with the
// index dimension. It indicates a configuration error and is never coerced.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// ErrCorruptIndex is returned when persisted index state is unreadable or
// internally inconsistent (partially written pair, dimension disagreement,
// slice length divergence).
var ErrCorruptIndex = errors.New("corrupt index")

// FlatIndex is a brute-force exact nearest-neighbor index. Vectors, chunk
// texts, and per-chunk document metadata are held in three parallel slices
// appended in insertion order; the invariant len(vectors) == len(texts) ==
// len(meta) holds at all times. Search is exact squared Euclidean distance
// against every stored vector.
//
// Reads (Search, Size) may run concurrently; mutation is serialized by the
// internal RWMutex. There is no per-document deletion: removing a document's
// vectors requires a full rebuild from the source documents.
type FlatIndex struct {
	dimensions int
	vectors    [][]float32
	texts      []string
	meta       []models.DocumentMetadata
	mu         sync.RWMutex
}

// New creates an empty index for vectors of the given dimension.
func New(dimensions int) (*FlatIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dimensions)
	}
	return &FlatIndex{
		dimensions: dimensions,
		vectors:    make([][]float32, 0),
		texts:      make([]string, 0),
		meta:       make([]models.DocumentMetadata, 0),
	}, nil
}

// Dimensions returns the fixed vector dimension.
func (x *FlatIndex) Dimensions() int {
	return x.dimensions
}

// Add appends one entry per chunk. Every chunk of a document shares the same
// document-level metadata, so meta is replicated once per entry. Vectors and
// texts must have equal length, and every vector must match the index dimension;
// nothing is appended when validation fails.
func (x *FlatIndex) Add(vectors [][]float32, texts []string, meta models.DocumentMetadata) error {
	if len(vectors) != len(texts) {
		return fmt.Errorf("vectors and texts length mismatch: %d vs %d", len(vectors), len(texts))
	}
	for i, v := range vectors {
		if len(v) != x.dimensions {
			return fmt.Errorf("%w: vector %d has %d dimensions, index expects %d",
				ErrDimensionMismatch, i, len(v), x.dimensions)
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	for i := range vectors {
		v := make([]float32, x.dimensions)
		copy(v, vectors[i])
		x.vectors = append(x.vectors, v)
		x.texts = append(x.texts, texts[i])
		x.meta = append(x.meta, meta)
	}
	return nil
}

// Search returns the k stored entries closest to query by squared Euclidean
// distance, ascending. When the index holds fewer than k entries, all of them
// are returned; an empty index returns an empty slice. Ties keep insertion order.
func (x *FlatIndex) Search(query []float32, k int) ([]models.RetrievedChunk, error) {
	if len(query) != x.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index expects %d",
			ErrDimensionMismatch, len(query), x.dimensions)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if k <= 0 || len(x.vectors) == 0 {
		return []models.RetrievedChunk{}, nil
	}

	order := make([]int, len(x.vectors))
	distances := make([]float64, len(x.vectors))
	for i, v := range x.vectors {
		order[i] = i
		distances[i] = utils.SquaredL2(query, v)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return distances[order[a]] < distances[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	results := make([]models.RetrievedChunk, k)
	for i := 0; i < k; i++ {
		pos := order[i]
		results[i] = models.RetrievedChunk{
			Text:     x.texts[pos],
			Metadata: x.meta[pos],
			Distance: distances[pos],
		}
	}
	return results, nil
}

// Size returns the number of stored entries.
func (x *FlatIndex) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.vectors)
}
