// Package answer generates natural-language answers from ranked retrieval
// results. The retrieval core supplies the ranked chunks; everything about
// prompting and the model call lives behind the Generator interface.
package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/paperstack/askdoc/internal/models"
)

// Answer is a generated response to a query.
type Answer struct {
	Text string `json:"text"`
}

// Generator produces an answer for a query given ranked context chunks and
// optional conversation history.
type Generator interface {
	Generate(ctx context.Context, query string, chunks []models.RetrievedChunk, history []models.Message) (*Answer, error)
}

const systemPrompt = "You are a helpful assistant answering questions about the user's documents. " +
	"Use only the provided context to answer. If the context does not contain the answer, say so."

// buildPrompt renders the ranked chunks into a context block followed by the
// question. Chunks are listed in rank order with their source filenames so
// the model can cite them.
func buildPrompt(query string, chunks []models.RetrievedChunk) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	for i, ch := range chunks {
		fmt.Fprintf(&b, "[%d] (%s) %s\n", i+1, ch.Metadata.Filename, ch.Text)
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(query)
	return b.String()
}
