package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultEmbeddingProvider, cfg.Embeddings.Provider)
	assert.Equal(t, DefaultOpenAIEmbedModel, cfg.Embeddings.OpenAI.Model)
	assert.Equal(t, 30*time.Second, cfg.Embeddings.Timeout)

	// Retrieval defaults
	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.InDelta(t, 0.3, cfg.RAG.SimilarityThreshold, 1e-9)
	assert.Equal(t, 500, cfg.RAG.ChunkSize)
	assert.Equal(t, 50, cfg.RAG.ChunkOverlap)
	assert.Equal(t, "document", cfg.RAG.Splitter)

	assert.Equal(t, "gpt-4o-mini", cfg.LLM.OpenAI.Model)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 500, cfg.LLM.MaxTokens)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Contains(t, cfg.Knowledge.Ignore, ".git/")
}

func TestDefaultPaths(t *testing.T) {
	assert.Contains(t, DefaultConfigDir(), "mindhub")
	assert.Contains(t, DefaultDataDir(), "mindhub")
	assert.Contains(t, DefaultDatabasePath(), "content.db")
	assert.Contains(t, GlobalConfigPath(), "config.yaml")
}

func TestLoadWithConfigFile(t *testing.T) {
	viper.Reset()
	cfg = nil

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
embeddings:
  provider: ollama
  timeout: 5s
  ollama:
    url: http://custom:11434
    model: mxbai-embed-large
database:
  path: /custom/content.db
rag:
  top_k: 3
  similarity_threshold: 0.5
  splitter: lines
llm:
  provider: anthropic
  max_tokens: 800
server:
  addr: ":9090"
  allowed_origins:
    - https://example.dev
knowledge:
  dir: /srv/knowledge
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	require.NoError(t, Load(configPath))
	loaded := Get()

	assert.Equal(t, "ollama", loaded.Embeddings.Provider)
	assert.Equal(t, 5*time.Second, loaded.Embeddings.Timeout)
	assert.Equal(t, "http://custom:11434", loaded.Embeddings.Ollama.URL)
	assert.Equal(t, "mxbai-embed-large", loaded.Embeddings.Ollama.Model)
	assert.Equal(t, "/custom/content.db", loaded.Database.Path)
	assert.Equal(t, 3, loaded.RAG.TopK)
	assert.InDelta(t, 0.5, loaded.RAG.SimilarityThreshold, 1e-9)
	assert.Equal(t, "lines", loaded.RAG.Splitter)
	// Unset keys keep their defaults.
	assert.Equal(t, DefaultChunkSize, loaded.RAG.ChunkSize)
	assert.Equal(t, "anthropic", loaded.LLM.Provider)
	assert.Equal(t, 800, loaded.LLM.MaxTokens)
	assert.Equal(t, ":9090", loaded.Server.Addr)
	assert.Equal(t, []string{"https://example.dev"}, loaded.Server.AllowedOrigins)
	assert.Equal(t, "/srv/knowledge", loaded.Knowledge.Dir)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	viper.Reset()
	cfg = nil

	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("MINDHUB_EMBEDDINGS_PROVIDER", "ollama")
	t.Setenv("MINDHUB_RAG_TOP_K", "7")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-env")

	require.NoError(t, Load(""))
	loaded := Get()

	assert.Equal(t, "ollama", loaded.Embeddings.Provider)
	assert.Equal(t, 7, loaded.RAG.TopK)
	assert.Equal(t, "sk-env", loaded.Embeddings.OpenAI.APIKey)
	assert.Equal(t, "sk-env", loaded.LLM.OpenAI.APIKey)
	assert.Equal(t, "sk-ant-env", loaded.LLM.Anthropic.APIKey)
}

func TestLoadKeepsConfiguredAPIKey(t *testing.T) {
	viper.Reset()
	cfg = nil

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("embeddings:\n  openai:\n    api_key: sk-file\n"), 0644))
	t.Setenv("OPENAI_API_KEY", "sk-env")

	require.NoError(t, Load(configPath))

	assert.Equal(t, "sk-file", Get().Embeddings.OpenAI.APIKey)
	assert.Equal(t, "sk-env", Get().LLM.OpenAI.APIKey)
}

func TestLoadMissingConfigFile(t *testing.T) {
	viper.Reset()
	cfg = nil

	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")

	require.NoError(t, Load(""))
	loaded := Get()

	assert.Equal(t, DefaultEmbeddingProvider, loaded.Embeddings.Provider)
	assert.Equal(t, DefaultTopK, loaded.RAG.TopK)
	assert.Empty(t, loaded.Embeddings.OpenAI.APIKey)
}

func TestLoadFindsRCFile(t *testing.T) {
	viper.Reset()
	cfg = nil

	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, RCFileName), []byte("rag:\n  top_k: 9\n"), 0644))
	t.Setenv("HOME", t.TempDir())
	t.Chdir(nested)

	require.NoError(t, Load(""))

	assert.Equal(t, 9, Get().RAG.TopK)
	assert.Contains(t, ConfigFilePath(), RCFileName)
}

func TestGet(t *testing.T) {
	cfg = nil

	c1 := Get()
	c2 := Get()
	assert.Same(t, c1, c2)
}
