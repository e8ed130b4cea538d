package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default configuration values
const (
	// Embedding defaults
	DefaultEmbeddingProvider = "openai"
	DefaultEmbeddingTimeout  = 30 * time.Second
	DefaultOpenAIEmbedModel  = "text-embedding-3-small"
	DefaultOllamaURL         = "http://localhost:11434"
	DefaultOllamaEmbedModel  = "nomic-embed-text"

	// Retrieval defaults
	DefaultTopK                = 5
	DefaultSimilarityThreshold = 0.3
	DefaultChunkSize           = 500
	DefaultChunkOverlap        = 50
	DefaultSplitter            = "document"
	DefaultInitTimeout         = 2 * time.Minute

	// LLM defaults
	DefaultLLMProvider    = "openai"
	DefaultTemperature    = 0.7
	DefaultMaxTokens      = 500
	DefaultOpenAILLMModel = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-haiku-20240307"
	DefaultOllamaLLMModel = "llama3"

	// Server defaults
	DefaultServerAddr   = ":8080"
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 60 * time.Second

	DefaultKnowledgeDir = "knowledge"
	DefaultDBFileName   = "content.db"
	RCFileName          = ".mindhubrc.yaml"
)

// DefaultIgnorePatterns returns the knowledge-dir patterns skipped by default.
func DefaultIgnorePatterns() []string {
	return []string{
		".git/",
		"drafts/",
		"*.draft.yaml",
		"*~",
		".DS_Store",
	}
}

// DefaultConfigDir returns the default configuration directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/mindhub"
	}
	return filepath.Join(home, ".config", "mindhub")
}

// DefaultDataDir returns the default data directory path.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".local/share/mindhub"
	}
	return filepath.Join(home, ".local", "share", "mindhub")
}

// DefaultDatabasePath returns the default content database path.
func DefaultDatabasePath() string {
	return filepath.Join(DefaultDataDir(), DefaultDBFileName)
}
