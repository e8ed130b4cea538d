package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickcecere/mindhub/internal/config"
	"github.com/nickcecere/mindhub/internal/embeddings"
)

// TestNewService tests the factory function.
func TestNewService(t *testing.T) {
	t.Run("creates Ollama service", func(t *testing.T) {
		cfg := &config.Config{LLM: config.LLMConfig{
			Provider: "ollama",
			Ollama:   config.OllamaLLMConfig{URL: "http://localhost:11434", Model: "llama3"},
		}}

		svc, err := NewService(cfg)
		require.NoError(t, err)
		assert.Equal(t, ProviderOllama, svc.Provider())
		assert.Equal(t, "llama3", svc.ModelName())
	})

	t.Run("creates OpenAI service without key", func(t *testing.T) {
		cfg := &config.Config{LLM: config.LLMConfig{
			Provider: "openai",
			OpenAI:   config.OpenAILLMConfig{Model: "gpt-4o-mini"},
		}}

		svc, err := NewService(cfg)
		require.NoError(t, err)
		assert.Equal(t, ProviderOpenAI, svc.Provider())
		assert.Equal(t, "gpt-4o-mini", svc.ModelName())
	})

	t.Run("creates Anthropic service", func(t *testing.T) {
		cfg := &config.Config{LLM: config.LLMConfig{
			Provider:  "anthropic",
			Anthropic: config.AnthropicConfig{APIKey: "sk-ant-test", Model: "claude-3-haiku-20240307"},
		}}

		svc, err := NewService(cfg)
		require.NoError(t, err)
		assert.Equal(t, ProviderAnthropic, svc.Provider())
	})

	t.Run("returns error for unsupported provider", func(t *testing.T) {
		_, err := NewService(&config.Config{LLM: config.LLMConfig{Provider: "unsupported"}})
		assert.ErrorContains(t, err, "unsupported")
	})
}

func TestOptionsFrom(t *testing.T) {
	opts := OptionsFrom(&config.Config{})
	assert.Equal(t, 0.7, opts.Temperature)
	assert.Equal(t, 500, opts.MaxTokens)

	opts = OptionsFrom(&config.Config{LLM: config.LLMConfig{Temperature: 0.2, MaxTokens: 100}})
	assert.Equal(t, CompletionOptions{Temperature: 0.2, MaxTokens: 100}, opts)
}

func TestNewOllamaService(t *testing.T) {
	svc := NewOllamaService("", "llama3")
	assert.Equal(t, "http://localhost:11434", svc.baseURL)

	svc = NewOllamaService("http://custom:8080/", "mistral")
	assert.Equal(t, "http://custom:8080", svc.baseURL)
}

// mockOllamaServer creates a test server that simulates Ollama's chat API.
func mockOllamaServer(t *testing.T, response string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req ollamaChatRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		assert.False(t, req.Stream)
		assert.Equal(t, 500, req.Options.NumPredict)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaMessage{Role: "assistant", Content: response},
			Done:    true,
		})
	}))
}

func TestOllamaComplete(t *testing.T) {
	server := mockOllamaServer(t, "Hallo! Wie kann ich helfen?")
	defer server.Close()

	svc := NewOllamaService(server.URL, "llama3")
	got, err := svc.Complete(context.Background(), []Message{{Role: "user", Content: "Hallo"}}, DefaultCompletionOptions())
	require.NoError(t, err)
	assert.Equal(t, "Hallo! Wie kann ich helfen?", got)
}

func TestOllamaCompleteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model \"llama3\" not found"}`))
	}))
	defer server.Close()

	svc := NewOllamaService(server.URL, "llama3")
	_, err := svc.Complete(context.Background(), []Message{{Role: "user", Content: "test"}}, DefaultCompletionOptions())
	assert.ErrorIs(t, err, embeddings.ErrProvider)
	assert.ErrorContains(t, err, "not found")
}

func TestAnthropicComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req anthropicRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		assert.Equal(t, "Du bist ein Assistent.", req.System)
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, "user", req.Messages[0].Role)
		}

		json.NewEncoder(w).Encode(anthropicResponse{
			Content: []anthropicContent{{Type: "text", Text: "Servus!"}},
		})
	}))
	defer server.Close()

	svc := NewAnthropicService("sk-ant-test", "claude-3-haiku-20240307", server.URL)
	got, err := svc.Complete(context.Background(), []Message{
		{Role: "system", Content: "Du bist ein Assistent."},
		{Role: "user", Content: "Hallo"},
	}, DefaultCompletionOptions())
	require.NoError(t, err)
	assert.Equal(t, "Servus!", got)
}

func TestAnthropicErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"Number of requests has exceeded your rate limit"}}`))
	}))
	defer server.Close()

	svc := NewAnthropicService("sk-ant-test", "claude", server.URL)
	_, err := svc.Complete(context.Background(), []Message{{Role: "user", Content: "x"}}, DefaultCompletionOptions())
	assert.ErrorIs(t, err, embeddings.ErrRateLimited)

	_, err = NewAnthropicService("", "claude", server.URL).Complete(context.Background(), nil, DefaultCompletionOptions())
	assert.ErrorIs(t, err, embeddings.ErrConfiguration)
}

// mockOpenAIServer serves the chat completions endpoint.
func mockOpenAIServer(t *testing.T, status int, body string, calls *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestOpenAIComplete(t *testing.T) {
	var calls atomic.Int32
	server := mockOpenAIServer(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1,
		"model": "gpt-4o-mini",
		"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Björn taucht gern."}}]
	}`, &calls)
	defer server.Close()

	svc := NewOpenAIService("sk-test", "gpt-4o-mini", server.URL)
	got, err := svc.Complete(context.Background(), []Message{{Role: "user", Content: "Hobbies?"}}, DefaultCompletionOptions())
	require.NoError(t, err)
	assert.Equal(t, "Björn taucht gern.", got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAICompleteErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   error
	}{
		{"unauthorized", 401, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`, embeddings.ErrAuth},
		{"rate limited", 429, `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`, embeddings.ErrRateLimited},
		{"quota", 429, `{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`, embeddings.ErrQuotaExceeded},
		{"server error", 500, `{"error":{"message":"boom","type":"server_error"}}`, embeddings.ErrProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := mockOpenAIServer(t, tt.status, tt.body, &calls)
			defer server.Close()

			svc := NewOpenAIService("sk-test", "gpt-4o-mini", server.URL)
			_, err := svc.Complete(context.Background(), []Message{{Role: "user", Content: "x"}}, DefaultCompletionOptions())
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestOpenAIMissingKey(t *testing.T) {
	var calls atomic.Int32
	server := mockOpenAIServer(t, http.StatusOK, `{}`, &calls)
	defer server.Close()

	_, err := NewOpenAIService("", "gpt-4o-mini", server.URL).Complete(context.Background(), nil, DefaultCompletionOptions())
	assert.ErrorIs(t, err, embeddings.ErrConfiguration)
	assert.Equal(t, int32(0), calls.Load())
}
