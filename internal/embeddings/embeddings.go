// Package embeddings converts text into embedding vectors through a remote provider.
package embeddings

import (
	"context"
	"fmt"
	"strings"

	"github.com/nickcecere/mindhub/internal/config"
)

// Provider represents an embedding provider type.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
)

// Service defines the embedding client contract.
type Service interface {
	// Embed returns the vector for a single document text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedQuery returns the vector for a search query. Providers with
	// task prefixes embed queries differently from documents.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds all texts in one request. The result has the same
	// length and order as texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimensions for this model.
	Dimensions() int

	// Provider returns the provider name.
	Provider() Provider

	// ModelName returns the model name.
	ModelName() string
}

// Known model dimensions
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,

	"nomic-embed-text":       768,
	"mxbai-embed-large":      1024,
	"all-minilm":             384,
	"snowflake-arctic-embed": 1024,
}

// GetModelDimensions returns the known dimensions for a model, or 0 if unknown.
func GetModelDimensions(model string) int {
	return modelDimensions[model]
}

// NewService creates an embedding service from the configuration. A missing
// credential is not an error here; it is reported on the first call.
func NewService(cfg *config.Config) (Service, error) {
	ec := cfg.Embeddings
	switch Provider(ec.Provider) {
	case ProviderOpenAI:
		return NewOpenAIService(ec.OpenAI.APIKey, ec.OpenAI.Model, ec.OpenAI.BaseURL, ec.OpenAI.Dimensions, ec.Timeout), nil
	case ProviderOllama:
		return NewOllamaService(ec.Ollama.URL, ec.Ollama.Model, ec.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", ec.Provider)
	}
}

// validateInputs enforces the non-empty text precondition.
func validateInputs(texts []string) error {
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("input %d is empty", i)
		}
	}
	return nil
}

// checkBatch verifies that a provider answered every input exactly once.
func checkBatch(want int, got [][]float32) error {
	if len(got) != want {
		return countMismatch(len(got), want)
	}
	for i, v := range got {
		if len(v) == 0 {
			return &ProviderError{
				Kind:    ErrProvider,
				Message: fmt.Sprintf("provider returned no embedding for input %d", i),
			}
		}
	}
	return nil
}

func countMismatch(got, want int) error {
	return &ProviderError{
		Kind:    ErrProvider,
		Message: fmt.Sprintf("provider returned %d embeddings for %d inputs", got, want),
	}
}
