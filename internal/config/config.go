// Package config handles configuration loading for mindhub.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Config represents the complete mindhub configuration.
type Config struct {
	Embeddings EmbeddingsConfig `mapstructure:"embeddings"`
	Database   DatabaseConfig   `mapstructure:"database"`
	RAG        RAGConfig        `mapstructure:"rag"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Server     ServerConfig     `mapstructure:"server"`
	Knowledge  KnowledgeConfig  `mapstructure:"knowledge"`
}

// EmbeddingsConfig configures the embedding client.
type EmbeddingsConfig struct {
	Provider string            `mapstructure:"provider"`
	Timeout  time.Duration     `mapstructure:"timeout"`
	OpenAI   OpenAIEmbedConfig `mapstructure:"openai"`
	Ollama   OllamaEmbedConfig `mapstructure:"ollama"`
}

// OpenAIEmbedConfig configures OpenAI embeddings.
type OpenAIEmbedConfig struct {
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Dimensions int    `mapstructure:"dimensions"`
}

// OllamaEmbedConfig configures Ollama embeddings.
type OllamaEmbedConfig struct {
	URL   string `mapstructure:"url"`
	Model string `mapstructure:"model"`
}

// DatabaseConfig points at the SQLite content database.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// RAGConfig holds the retrieval defaults.
type RAGConfig struct {
	TopK                int           `mapstructure:"top_k"`
	SimilarityThreshold float64       `mapstructure:"similarity_threshold"`
	ChunkSize           int           `mapstructure:"chunk_size"`
	ChunkOverlap        int           `mapstructure:"chunk_overlap"`
	Splitter            string        `mapstructure:"splitter"`
	InitTimeout         time.Duration `mapstructure:"init_timeout"`
}

// LLMConfig configures the chat model.
type LLMConfig struct {
	Provider    string          `mapstructure:"provider"`
	Temperature float64         `mapstructure:"temperature"`
	MaxTokens   int             `mapstructure:"max_tokens"`
	OpenAI      OpenAILLMConfig `mapstructure:"openai"`
	Anthropic   AnthropicConfig `mapstructure:"anthropic"`
	Ollama      OllamaLLMConfig `mapstructure:"ollama"`
}

// OpenAILLMConfig configures OpenAI chat completions.
type OpenAILLMConfig struct {
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// AnthropicConfig configures Anthropic messages.
type AnthropicConfig struct {
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// OllamaLLMConfig configures Ollama chat.
type OllamaLLMConfig struct {
	URL   string `mapstructure:"url"`
	Model string `mapstructure:"model"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

// KnowledgeConfig locates the YAML knowledge base.
type KnowledgeConfig struct {
	Dir    string   `mapstructure:"dir"`
	Ignore []string `mapstructure:"ignore"`
}

var cfg *Config

// Get returns the current configuration.
func Get() *Config {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns a configuration populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Embeddings: EmbeddingsConfig{
			Provider: DefaultEmbeddingProvider,
			Timeout:  DefaultEmbeddingTimeout,
			OpenAI:   OpenAIEmbedConfig{Model: DefaultOpenAIEmbedModel},
			Ollama:   OllamaEmbedConfig{URL: DefaultOllamaURL, Model: DefaultOllamaEmbedModel},
		},
		Database: DatabaseConfig{Path: DefaultDatabasePath()},
		RAG: RAGConfig{
			TopK:                DefaultTopK,
			SimilarityThreshold: DefaultSimilarityThreshold,
			ChunkSize:           DefaultChunkSize,
			ChunkOverlap:        DefaultChunkOverlap,
			Splitter:            DefaultSplitter,
			InitTimeout:         DefaultInitTimeout,
		},
		LLM: LLMConfig{
			Provider:    DefaultLLMProvider,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
			OpenAI:      OpenAILLMConfig{Model: DefaultOpenAILLMModel},
			Anthropic:   AnthropicConfig{Model: DefaultAnthropicModel},
			Ollama:      OllamaLLMConfig{URL: DefaultOllamaURL, Model: DefaultOllamaLLMModel},
		},
		Server: ServerConfig{
			Addr:           DefaultServerAddr,
			AllowedOrigins: []string{"*"},
			ReadTimeout:    DefaultReadTimeout,
			WriteTimeout:   DefaultWriteTimeout,
		},
		Knowledge: KnowledgeConfig{
			Dir:    DefaultKnowledgeDir,
			Ignore: DefaultIgnorePatterns(),
		},
	}
}

// Load reads configuration from file and environment variables.
func Load(configFile string) error {
	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(DefaultConfigDir())
		viper.AddConfigPath(".")

		if rcPath := findRCFile(); rcPath != "" {
			viper.SetConfigFile(rcPath)
		}
	}

	viper.SetEnvPrefix("MINDHUB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug("No config file found, using defaults")
	} else {
		log.Debug("Loaded config", "file", viper.ConfigFileUsed())
	}

	loaded := &Config{}
	if err := viper.Unmarshal(loaded); err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}
	cfg = loaded

	loadAPIKeysFromEnv()

	return nil
}

func setDefaults() {
	d := DefaultConfig()

	viper.SetDefault("embeddings.provider", d.Embeddings.Provider)
	viper.SetDefault("embeddings.timeout", d.Embeddings.Timeout)
	viper.SetDefault("embeddings.openai.model", d.Embeddings.OpenAI.Model)
	viper.SetDefault("embeddings.ollama.url", d.Embeddings.Ollama.URL)
	viper.SetDefault("embeddings.ollama.model", d.Embeddings.Ollama.Model)

	viper.SetDefault("database.path", d.Database.Path)

	viper.SetDefault("rag.top_k", d.RAG.TopK)
	viper.SetDefault("rag.similarity_threshold", d.RAG.SimilarityThreshold)
	viper.SetDefault("rag.chunk_size", d.RAG.ChunkSize)
	viper.SetDefault("rag.chunk_overlap", d.RAG.ChunkOverlap)
	viper.SetDefault("rag.splitter", d.RAG.Splitter)
	viper.SetDefault("rag.init_timeout", d.RAG.InitTimeout)

	viper.SetDefault("llm.provider", d.LLM.Provider)
	viper.SetDefault("llm.temperature", d.LLM.Temperature)
	viper.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	viper.SetDefault("llm.openai.model", d.LLM.OpenAI.Model)
	viper.SetDefault("llm.anthropic.model", d.LLM.Anthropic.Model)
	viper.SetDefault("llm.ollama.url", d.LLM.Ollama.URL)
	viper.SetDefault("llm.ollama.model", d.LLM.Ollama.Model)

	viper.SetDefault("server.addr", d.Server.Addr)
	viper.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	viper.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	viper.SetDefault("server.write_timeout", d.Server.WriteTimeout)

	viper.SetDefault("knowledge.dir", d.Knowledge.Dir)
	viper.SetDefault("knowledge.ignore", d.Knowledge.Ignore)
}

// findRCFile walks from the working directory upward looking for .mindhubrc.yaml.
func findRCFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		rcPath := filepath.Join(dir, RCFileName)
		if _, err := os.Stat(rcPath); err == nil {
			return rcPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadAPIKeysFromEnv fills credentials the config file left empty.
func loadAPIKeysFromEnv() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if cfg.Embeddings.OpenAI.APIKey == "" {
			cfg.Embeddings.OpenAI.APIKey = key
		}
		if cfg.LLM.OpenAI.APIKey == "" {
			cfg.LLM.OpenAI.APIKey = key
		}
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && cfg.LLM.Anthropic.APIKey == "" {
		cfg.LLM.Anthropic.APIKey = key
	}
}

// ConfigFilePath returns the path of the loaded config file, or "" if none.
func ConfigFilePath() string {
	return viper.ConfigFileUsed()
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}
