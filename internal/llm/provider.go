// Package llm isolates the pipeline from any specific model backend.
package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the minimal chat-completion surface the summarizer needs. Any
// OpenAI-compatible backend satisfies it, as do test fakes.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIProvider adapts *openai.Client to the Client interface.
type OpenAIProvider struct {
	Inner *openai.Client
}

func (p *OpenAIProvider) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return p.Inner.CreateChatCompletion(ctx, request)
}

// NewProvider builds a provider for the given endpoint. It returns nil when
// neither a key nor a base URL is configured; callers treat nil as "AI
// absent", so the capability decision is made once here rather than
// re-checked downstream.
func NewProvider(baseURL, apiKey string) *OpenAIProvider {
	if apiKey == "" && baseURL == "" {
		return nil
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{Inner: openai.NewClientWithConfig(cfg)}
}
