package answer

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/paperstack/askdoc/internal/models"
)

// OpenAIGenerator answers queries through an OpenAI-compatible chat endpoint.
// Works against any server speaking the OpenAI API (OpenRouter, Ollama, vLLM)
// by pointing BaseURL at it.
type OpenAIGenerator struct {
	llm *openai.LLM
}

// Options configures the chat endpoint.
type Options struct {
	BaseURL string
	Model   string
	APIKey  string
}

// NewOpenAIGenerator builds a generator for the configured endpoint and model.
func NewOpenAIGenerator(opts Options) (*OpenAIGenerator, error) {
	clientOpts := []openai.Option{openai.WithToken(opts.APIKey)}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, openai.WithBaseURL(opts.BaseURL))
	}
	if opts.Model != "" {
		clientOpts = append(clientOpts, openai.WithModel(opts.Model))
	}
	llm, err := openai.New(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	return &OpenAIGenerator{llm: llm}, nil
}

// Generate sends the system prompt, prior history, and the context-plus-question
// prompt to the model and returns its first choice.
func (g *OpenAIGenerator) Generate(ctx context.Context, query string, chunks []models.RetrievedChunk, history []models.Message) (*Answer, error) {
	messages := make([]llms.MessageContent, 0, len(history)+2)
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt))
	for _, m := range history {
		role := schema.ChatMessageTypeHuman
		if m.Role == "assistant" {
			role = schema.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, m.Content))
	}
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeHuman, buildPrompt(query, chunks)))

	resp, err := g.llm.GenerateContent(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("generate answer: empty response")
	}
	return &Answer{Text: resp.Choices[0].Content}, nil
}
