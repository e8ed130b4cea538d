package embeddings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickcecere/mindhub/internal/config"
)

func TestGetModelDimensions(t *testing.T) {
	tests := []struct {
		model    string
		expected int
	}{
		{"text-embedding-3-small", 1536},
		{"text-embedding-3-large", 3072},
		{"nomic-embed-text", 768},
		{"mxbai-embed-large", 1024},
		{"unknown-model", 0},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetModelDimensions(tt.model))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
		want    error
	}{
		{"unauthorized", 401, "Incorrect API key provided", ErrAuth},
		{"rate limited", 429, "Rate limit reached for requests", ErrRateLimited},
		{"quota", 429, "You exceeded your current quota", ErrQuotaExceeded},
		{"billing", 429, "Check your Billing details", ErrQuotaExceeded},
		{"server error", 500, "internal error", ErrProvider},
		{"bad request", 400, "quota", ErrProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(tt.status, tt.message)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestProviderErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := error(&ProviderError{Kind: ErrProvider, Message: cause.Error(), Err: cause})

	assert.ErrorIs(t, err, ErrProvider)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrAuth)

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 0, pe.StatusCode)
}

func TestCheckBatch(t *testing.T) {
	assert.NoError(t, checkBatch(2, [][]float32{{1}, {2}}))
	assert.ErrorIs(t, checkBatch(3, [][]float32{{1}, {2}}), ErrProvider)
	assert.ErrorIs(t, checkBatch(2, [][]float32{{1}, nil}), ErrProvider)
}

// mockOllamaServer simulates Ollama's embed API; vector i is filled with (i+1)*0.1.
func mockOllamaServer(t *testing.T, dims int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		vectors := make([][]float32, len(req.Input))
		for i := range req.Input {
			vec := make([]float32, dims)
			for j := range vec {
				vec[j] = float32(i+1) * 0.1
			}
			vectors[i] = vec
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: vectors})
	}))
}

func TestOllamaEmbed(t *testing.T) {
	server := mockOllamaServer(t, 768)
	defer server.Close()

	svc := NewOllamaService(server.URL, "nomic-embed-text", time.Second)

	t.Run("single text", func(t *testing.T) {
		vec, err := svc.Embed(context.Background(), "Tauchen ist meine Leidenschaft")
		require.NoError(t, err)
		assert.Len(t, vec, 768)
		assert.Equal(t, float32(0.1), vec[0])
	})

	t.Run("batch keeps order and length", func(t *testing.T) {
		vectors, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})
		require.NoError(t, err)
		require.Len(t, vectors, 3)
		for i, vec := range vectors {
			assert.Equal(t, float32(i+1)*0.1, vec[0])
		}
	})

	t.Run("empty batch returns nil", func(t *testing.T) {
		vectors, err := svc.EmbedBatch(context.Background(), nil)
		require.NoError(t, err)
		assert.Nil(t, vectors)
	})

	t.Run("empty text is rejected", func(t *testing.T) {
		_, err := svc.Embed(context.Background(), "   ")
		assert.Error(t, err)
	})
}

func TestOllamaTaskPrefixes(t *testing.T) {
	svc := NewOllamaService("", "nomic-embed-text", 0)
	assert.Equal(t, "search_document: doc", svc.applyPrefix("doc", false))
	assert.Equal(t, "search_query: q", svc.applyPrefix("q", true))

	svc = NewOllamaService("", "mxbai-embed-large", 0)
	assert.Equal(t, "doc", svc.applyPrefix("doc", false))
	assert.Equal(t, "Represent this sentence for searching relevant passages: q", svc.applyPrefix("q", true))

	svc = NewOllamaService("", "unknown-model", 0)
	assert.Equal(t, "q", svc.applyPrefix("q", true))
}

func TestOllamaDimensionUpdate(t *testing.T) {
	server := mockOllamaServer(t, 512)
	defer server.Close()

	svc := NewOllamaService(server.URL, "nomic-embed-text", time.Second)
	assert.Equal(t, 768, svc.Dimensions())

	_, err := svc.Embed(context.Background(), "test")
	require.NoError(t, err)
	assert.Equal(t, 512, svc.Dimensions())
}

func TestOllamaErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"unauthorized"}`, ErrAuth},
		{"rate limited", http.StatusTooManyRequests, `{"error":"too many requests"}`, ErrRateLimited},
		{"quota", http.StatusTooManyRequests, `{"error":"monthly quota exhausted"}`, ErrQuotaExceeded},
		{"model missing", http.StatusNotFound, `{"error":"model not found"}`, ErrProvider},
		{"plain body", http.StatusInternalServerError, "boom", ErrProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc := NewOllamaService(server.URL, "nomic-embed-text", time.Second)
			_, err := svc.Embed(context.Background(), "test")

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			var pe *ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.status, pe.StatusCode)
		})
	}
}

func TestOllamaBatchLengthMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float32{{0.1, 0.2}}})
	}))
	defer server.Close()

	svc := NewOllamaService(server.URL, "all-minilm", time.Second)
	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProvider)
	assert.Contains(t, err.Error(), "1 embeddings for 2 inputs")
}

func TestOllamaTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	svc := NewOllamaService(server.URL, "nomic-embed-text", 20*time.Millisecond)
	_, err := svc.Embed(context.Background(), "test")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProvider)
	assert.Contains(t, err.Error(), "timed out")
}

func TestOllamaMissingModel(t *testing.T) {
	svc := NewOllamaService("http://127.0.0.1:1", "", time.Second)
	_, err := svc.Embed(context.Background(), "test")
	assert.ErrorIs(t, err, ErrConfiguration)
}

// mockOpenAIServer answers the embeddings endpoint. Vectors are returned in
// reverse index order to prove results are placed by index.
func mockOpenAIServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req struct {
			Input json.RawMessage `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var inputs []string
		if err := json.Unmarshal(req.Input, &inputs); err != nil {
			var single string
			require.NoError(t, json.Unmarshal(req.Input, &single))
			inputs = []string{single}
		}

		data := make([]map[string]any, 0, len(inputs))
		for i := len(inputs) - 1; i >= 0; i-- {
			data = append(data, map[string]any{
				"object":    "embedding",
				"index":     i,
				"embedding": []float64{float64(i + 1), 0, 0},
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  "text-embedding-3-small",
			"usage":  map[string]any{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
}

func TestOpenAIEmbed(t *testing.T) {
	var calls atomic.Int32
	server := mockOpenAIServer(t, &calls)
	defer server.Close()

	svc := NewOpenAIService("sk-test", "text-embedding-3-small", server.URL+"/", 0, time.Second)

	t.Run("single text", func(t *testing.T) {
		vec, err := svc.Embed(context.Background(), "Hobbies")
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 0, 0}, vec)
	})

	t.Run("batch is placed by index", func(t *testing.T) {
		vectors, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})
		require.NoError(t, err)
		require.Len(t, vectors, 3)
		assert.Equal(t, float32(1), vectors[0][0])
		assert.Equal(t, float32(2), vectors[1][0])
		assert.Equal(t, float32(3), vectors[2][0])
	})

	assert.Equal(t, 3, svc.Dimensions())
	assert.Equal(t, int32(2), calls.Load())
}

func TestOpenAIMissingKeyFailsBeforeNetwork(t *testing.T) {
	var calls atomic.Int32
	server := mockOpenAIServer(t, &calls)
	defer server.Close()

	svc := NewOpenAIService("", "text-embedding-3-small", server.URL+"/", 0, time.Second)

	_, err := svc.Embed(context.Background(), "test")
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = svc.EmbedBatch(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrConfiguration)

	assert.Equal(t, int32(0), calls.Load())
}

func TestOpenAIErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{
			name:   "invalid key",
			status: http.StatusUnauthorized,
			body:   `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`,
			want:   ErrAuth,
		},
		{
			name:   "rate limit",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"message":"Rate limit reached for requests","type":"requests","code":"rate_limit_exceeded"}}`,
			want:   ErrRateLimited,
		},
		{
			name:   "insufficient quota",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"message":"You exceeded your current quota, please check your plan and billing details.","type":"insufficient_quota","code":"insufficient_quota"}}`,
			want:   ErrQuotaExceeded,
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"error":{"message":"The server had an error","type":"server_error"}}`,
			want:   ErrProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc := NewOpenAIService("sk-test", "text-embedding-3-small", server.URL+"/", 0, time.Second)
			_, err := svc.Embed(context.Background(), "test")

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewService(t *testing.T) {
	t.Run("openai without key", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Embeddings.OpenAI.APIKey = ""

		svc, err := NewService(cfg)
		require.NoError(t, err)
		assert.Equal(t, ProviderOpenAI, svc.Provider())
		assert.Equal(t, config.DefaultOpenAIEmbedModel, svc.ModelName())
		assert.Equal(t, 1536, svc.Dimensions())
	})

	t.Run("ollama", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Embeddings.Provider = "ollama"

		svc, err := NewService(cfg)
		require.NoError(t, err)
		assert.Equal(t, ProviderOllama, svc.Provider())
		assert.Equal(t, "nomic-embed-text", svc.ModelName())
	})

	t.Run("unsupported provider", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Embeddings.Provider = "cohere"

		_, err := NewService(cfg)
		assert.ErrorContains(t, err, "unsupported embedding provider")
	})
}
