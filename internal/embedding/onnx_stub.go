//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"fmt"
)

// ONNXEmbedder is a stub when built without CGO; see onnx.go for the real implementation.
type ONNXEmbedder struct{}

// NewONNXEmbedder always fails without CGO: onnxruntime needs CGO_ENABLED=1.
func NewONNXEmbedder(Options) (*ONNXEmbedder, error) {
	return nil, fmt.Errorf("%w: onnx embedder requires CGO and the onnxruntime library", ErrModelUnavailable)
}

// Embed is never reachable without CGO.
func (e *ONNXEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, ErrModelUnavailable
}

// EmbedBatch is never reachable without CGO.
func (e *ONNXEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, ErrModelUnavailable
}

// Dimensions returns 0 without CGO.
func (e *ONNXEmbedder) Dimensions() int { return 0 }

// Close is a no-op.
func (e *ONNXEmbedder) Close() error { return nil }
