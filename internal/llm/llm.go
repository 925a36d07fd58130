package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Client abstracts LLM providers for document analysis.
type Client interface {
	// ExtractFacts returns the provider's raw response to the fact-extraction
	// prompt. Callers parse it; providers only guarantee non-empty output.
	ExtractFacts(ctx context.Context, documentText string) (json.RawMessage, error)
	// Summarize returns a structured JSON summary of the document.
	Summarize(ctx context.Context, documentText string) (json.RawMessage, error)
}

// PromptClient runs a single free-form prompt. The entity researcher uses it
// to condense scraped web content.
type PromptClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation used when no provider is configured.
type PlaceholderClient struct{}

func (PlaceholderClient) ExtractFacts(ctx context.Context, documentText string) (json.RawMessage, error) {
	_ = ctx
	_ = documentText
	return nil, ErrNotImplemented
}

func (PlaceholderClient) Summarize(ctx context.Context, documentText string) (json.RawMessage, error) {
	_ = ctx
	_ = documentText
	return nil, ErrNotImplemented
}

func (PlaceholderClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	_ = ctx
	_ = systemPrompt
	_ = userPrompt
	return "", ErrNotImplemented
}
