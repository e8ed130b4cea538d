package embeddings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIService implements the embedding service using the OpenAI API.
type OpenAIService struct {
	client     openai.Client
	apiKey     string
	model      string
	dimensions atomic.Int64
	timeout    time.Duration
}

// NewOpenAIService creates a new OpenAI embedding service.
func NewOpenAIService(apiKey, model, baseURL string, dimensions int, timeout time.Duration) *OpenAIService {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// Rate limits are surfaced to the caller, never retried here.
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	if dimensions == 0 {
		dimensions = GetModelDimensions(model)
		if dimensions == 0 {
			dimensions = 1536
			log.Debug("Unknown model dimensions, defaulting", "model", model, "dimensions", dimensions)
		}
	}

	s := &OpenAIService{
		client:  openai.NewClient(opts...),
		apiKey:  apiKey,
		model:   model,
		timeout: timeout,
	}
	s.dimensions.Store(int64(dimensions))
	return s
}

// Embed calls the single-input embedding endpoint.
func (s *OpenAIService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.ready([]string{text}); err != nil {
		return nil, err
	}

	vectors, err := s.request(ctx, openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)}, 1)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedQuery embeds a query. OpenAI models take no task prefix.
func (s *OpenAIService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return s.Embed(ctx, text)
}

// EmbedBatch embeds all texts in a single request.
func (s *OpenAIService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := s.ready(texts); err != nil {
		return nil, err
	}

	return s.request(ctx, openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts}, len(texts))
}

// Dimensions returns the embedding dimensions.
func (s *OpenAIService) Dimensions() int {
	return int(s.dimensions.Load())
}

// Provider returns the provider name.
func (s *OpenAIService) Provider() Provider {
	return ProviderOpenAI
}

// ModelName returns the model name.
func (s *OpenAIService) ModelName() string {
	return s.model
}

func (s *OpenAIService) ready(texts []string) error {
	if s.apiKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrConfiguration)
	}
	return validateInputs(texts)
}

func (s *OpenAIService) request(ctx context.Context, input openai.EmbeddingNewParamsInputUnion, want int) ([][]float32, error) {
	ctx, cancel := WithTimeout(ctx, s.timeout)
	defer cancel()

	log.Debug("Requesting embeddings from OpenAI", "model", s.model, "count", want)

	resp, err := s.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(s.model),
		Input: input,
	})
	if err != nil {
		return nil, ClassifyOpenAIError(err, s.timeout)
	}

	// Place vectors by their reported index; anything missing fails checkBatch.
	vectors := make([][]float32, want)
	for _, data := range resp.Data {
		idx := int(data.Index)
		if idx < 0 || idx >= want {
			return nil, &ProviderError{
				Kind:    ErrProvider,
				Message: fmt.Sprintf("provider returned embedding index %d for %d inputs", idx, want),
			}
		}
		vec := make([]float32, len(data.Embedding))
		for i, v := range data.Embedding {
			vec[i] = float32(v)
		}
		vectors[idx] = vec
	}
	if len(resp.Data) != want {
		return nil, countMismatch(len(resp.Data), want)
	}
	if err := checkBatch(want, vectors); err != nil {
		return nil, err
	}

	s.dimensions.Store(int64(len(vectors[0])))
	return vectors, nil
}

// ClassifyOpenAIError maps an openai-go client error onto the failure kinds.
func ClassifyOpenAIError(err error, timeout time.Duration) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return TransportError(err, timeout)
	}

	message := apiErr.Message
	if message == "" {
		message = apiErr.Error()
	}
	// The error code (e.g. insufficient_quota) is part of the quota signal.
	pe := Classify(apiErr.StatusCode, strings.TrimSpace(message+" "+apiErr.Code+" "+apiErr.Type))
	pe.Message = message
	pe.Err = err
	return pe
}
