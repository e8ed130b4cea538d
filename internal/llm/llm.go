// Package llm talks to chat-completion providers and builds the portfolio
// assistant's replies.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/nickcecere/mindhub/internal/config"
)

// Provider represents an LLM provider type.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "system", "user", or "assistant"
	Content string `json:"content"`
}

// CompletionOptions configures the completion request.
type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
}

// DefaultCompletionOptions returns temperature 0.7 and 500 tokens.
func DefaultCompletionOptions() CompletionOptions {
	return CompletionOptions{
		Temperature: config.DefaultTemperature,
		MaxTokens:   config.DefaultMaxTokens,
	}
}

// Service defines the interface for LLM services. Provider failures match
// the kinds in package embeddings (ErrAuth, ErrRateLimited, ...).
type Service interface {
	// Complete generates a completion for the given messages.
	Complete(ctx context.Context, messages []Message, opts CompletionOptions) (string, error)

	// Provider returns the provider name.
	Provider() Provider

	// ModelName returns the model name.
	ModelName() string
}

// requestTimeout bounds one completion call for the HTTP-based providers.
const requestTimeout = 2 * time.Minute

// NewService creates an LLM service based on the configuration. Missing
// credentials are reported by the first Complete call.
func NewService(cfg *config.Config) (Service, error) {
	switch Provider(cfg.LLM.Provider) {
	case ProviderOllama:
		return NewOllamaService(cfg.LLM.Ollama.URL, cfg.LLM.Ollama.Model), nil
	case ProviderOpenAI:
		return NewOpenAIService(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.Model, cfg.LLM.OpenAI.BaseURL), nil
	case ProviderAnthropic:
		return NewAnthropicService(cfg.LLM.Anthropic.APIKey, cfg.LLM.Anthropic.Model, cfg.LLM.Anthropic.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}
}

// OptionsFrom reads the completion settings from the configuration.
func OptionsFrom(cfg *config.Config) CompletionOptions {
	opts := DefaultCompletionOptions()
	if cfg.LLM.Temperature > 0 {
		opts.Temperature = cfg.LLM.Temperature
	}
	if cfg.LLM.MaxTokens > 0 {
		opts.MaxTokens = cfg.LLM.MaxTokens
	}
	return opts
}
