//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/paperstack/askdoc/pkg/utils"
)

// ONNXEmbedder runs a sentence-transformer ONNX model via onnxruntime.
// Requires CGO and the onnxruntime shared library. The session and its
// tensors are reused across calls; inference is serialized by a mutex
// because tensor buffers are shared.
type ONNXEmbedder struct {
	session    *ort.AdvancedSession
	dimensions int
	maxTokens  int
	tokenizer  Tokenizer
	cache      *Cache

	inputIDs      *ort.Tensor[int64]
	attentionMask *ort.Tensor[int64]
	tokenTypeIDs  *ort.Tensor[int64]
	output        *ort.Tensor[float32]
	mu            sync.Mutex
}

// NewONNXEmbedder loads the model at opts.ModelPath and prepares a reusable
// inference session. Any initialization failure wraps ErrModelUnavailable.
func NewONNXEmbedder(opts Options) (*ONNXEmbedder, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("%w: initialize onnxruntime: %v", ErrModelUnavailable, err)
	}

	tokenizer := &HashTokenizer{}
	ids, mask, types := tokenizer.Tokenize("", opts.MaxTokens)
	maxTokens := len(ids)

	inputIDs, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), ids)
	if err != nil {
		return nil, fmt.Errorf("%w: create input_ids tensor: %v", ErrModelUnavailable, err)
	}
	attention, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), mask)
	if err != nil {
		inputIDs.Destroy()
		return nil, fmt.Errorf("%w: create attention_mask tensor: %v", ErrModelUnavailable, err)
	}
	tokenTypes, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), types)
	if err != nil {
		inputIDs.Destroy()
		attention.Destroy()
		return nil, fmt.Errorf("%w: create token_type_ids tensor: %v", ErrModelUnavailable, err)
	}
	output, err := ort.NewTensor(ort.NewShape(1, int64(opts.Dimensions)), make([]float32, opts.Dimensions))
	if err != nil {
		inputIDs.Destroy()
		attention.Destroy()
		tokenTypes.Destroy()
		return nil, fmt.Errorf("%w: create output tensor: %v", ErrModelUnavailable, err)
	}

	session, err := ort.NewAdvancedSession(
		opts.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"output"},
		[]ort.ArbitraryTensor{inputIDs, attention, tokenTypes},
		[]ort.ArbitraryTensor{output},
		nil,
	)
	if err != nil {
		inputIDs.Destroy()
		attention.Destroy()
		tokenTypes.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("%w: load model %s: %v", ErrModelUnavailable, opts.ModelPath, err)
	}

	return &ONNXEmbedder{
		session:       session,
		dimensions:    opts.Dimensions,
		maxTokens:     maxTokens,
		tokenizer:     tokenizer,
		cache:         NewCache(opts.CacheSize),
		inputIDs:      inputIDs,
		attentionMask: attention,
		tokenTypeIDs:  tokenTypes,
		output:        output,
	}, nil
}

// Embed returns the L2-normalized embedding for text, consulting the cache first.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ids, mask, types := e.tokenizer.Tokenize(text, e.maxTokens)
	copy(e.inputIDs.GetData(), ids)
	copy(e.attentionMask.GetData(), mask)
	copy(e.tokenTypeIDs.GetData(), types)

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("embedding inference: %w", err)
	}

	vector := make([]float32, e.dimensions)
	copy(vector, e.output.GetData()[:e.dimensions])
	utils.NormalizeL2(vector)
	e.cache.Set(text, vector)
	return vector, nil
}

// EmbedBatch embeds each text in order.
func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
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
func (e *ONNXEmbedder) Dimensions() int {
	return e.dimensions
}

// Close destroys the session and tensors.
func (e *ONNXEmbedder) Close() error {
	var err error
	if e.session != nil {
		err = e.session.Destroy()
		e.session = nil
	}
	for _, t := range []*ort.Tensor[int64]{e.inputIDs, e.attentionMask, e.tokenTypeIDs} {
		if t != nil {
			_ = t.Destroy()
		}
	}
	e.inputIDs, e.attentionMask, e.tokenTypeIDs = nil, nil, nil
	if e.output != nil {
		_ = e.output.Destroy()
		e.output = nil
	}
	return err
}
