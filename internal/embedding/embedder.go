// Package embedding maps chunk and query text to fixed-dimension dense vectors.
package embedding

import (
	"context"
	"errors"
)

// ErrModelUnavailable is returned when the embedding model cannot be loaded or
// initialized. It is fatal to the embedder instance and is not retried.
var ErrModelUnavailable = errors.New("embedding model unavailable")

// Embedder produces vector embeddings for text. The dimension is fixed at
// construction and must match the vector index the embedder feeds.
type Embedder interface {
	// Embed embeds a single text: a batch of one with the single vector extracted.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch embeds texts and returns one vector per input, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions returns the fixed embedding dimension.
	Dimensions() int
	Close() error
}

// Options configures embedder construction.
type Options struct {
	ModelPath  string
	Dimensions int
	MaxTokens  int
	CacheSize  int
}
