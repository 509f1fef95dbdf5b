package embedding

import (
	"context"
	"math"

	"github.com/paperstack/askdoc/pkg/utils"
)

// MockEmbedder produces deterministic unit-length vectors derived from the
// text hash: the same text always embeds to the same vector. Used in tests
// and when running without an ONNX model.
type MockEmbedder struct {
	dimensions int
	cache      *Cache
}

// NewMockEmbedder returns a mock embedder of the given dimension (384 when non-positive,
// matching common sentence-transformer models).
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions, cache: NewCache(256)}
}

// Embed returns a deterministic normalized vector for text.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	seed := hashToken(text)
	vector := make([]float32, e.dimensions)
	for i := range vector {
		vector[i] = float32(math.Sin(float64(seed)*float64(i+1))*0.1 + 0.01)
	}
	utils.NormalizeL2(vector)
	e.cache.Set(text, vector)
	return vector, nil
}

// EmbedBatch embeds each text in order.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int { return e.dimensions }

// Close is a no-op.
func (e *MockEmbedder) Close() error { return nil }
