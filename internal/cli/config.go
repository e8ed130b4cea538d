package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nickcecere/mindhub/internal/config"
	"github.com/nickcecere/mindhub/internal/ui"
)

var configShowPath bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long: `Display current configuration settings and config file locations.

Examples:
  # Show current configuration
  mindhub config

  # Show config file paths
  mindhub config --path`,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configShowPath, "path", false, "show config file paths")
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	if configShowPath {
		fmt.Println(ui.SectionTitle.Render("Configuration Paths"))
		fmt.Println()
		fmt.Printf("Global config: %s\n", config.GlobalConfigPath())
		fmt.Printf("Local config:  %s (searched from cwd upward)\n", config.RCFileName)
		fmt.Printf("Active config: %s\n", config.ConfigFilePath())
		fmt.Printf("Database:      %s\n", cfg.Database.Path)
		fmt.Printf("Knowledge:     %s\n", cfg.Knowledge.Dir)
		return nil
	}

	fmt.Println(ui.SectionTitle.Render("Current Configuration"))
	fmt.Println()

	fmt.Println(ui.Bold.Render("Embeddings:"))
	fmt.Printf("  Provider: %s\n", cfg.Embeddings.Provider)
	fmt.Printf("  Timeout: %s\n", cfg.Embeddings.Timeout)
	fmt.Printf("  OpenAI Model: %s\n", cfg.Embeddings.OpenAI.Model)
	fmt.Printf("  OpenAI Key: %s\n", keyState(cfg.Embeddings.OpenAI.APIKey))
	if cfg.Embeddings.OpenAI.BaseURL != "" {
		fmt.Printf("  OpenAI Base URL: %s\n", cfg.Embeddings.OpenAI.BaseURL)
	}
	fmt.Printf("  Ollama URL: %s\n", cfg.Embeddings.Ollama.URL)
	fmt.Printf("  Ollama Model: %s\n", cfg.Embeddings.Ollama.Model)
	fmt.Println()

	fmt.Println(ui.Bold.Render("Retrieval:"))
	fmt.Printf("  Top K: %d\n", cfg.RAG.TopK)
	fmt.Printf("  Similarity Threshold: %.2f\n", cfg.RAG.SimilarityThreshold)
	fmt.Printf("  Splitter: %s\n", cfg.RAG.Splitter)
	if cfg.RAG.Splitter == "line" {
		fmt.Printf("  Chunk Size: %d\n", cfg.RAG.ChunkSize)
		fmt.Printf("  Chunk Overlap: %d\n", cfg.RAG.ChunkOverlap)
	}
	fmt.Printf("  Init Timeout: %s\n", cfg.RAG.InitTimeout)
	fmt.Println()

	fmt.Println(ui.Bold.Render("LLM:"))
	fmt.Printf("  Provider: %s\n", cfg.LLM.Provider)
	fmt.Printf("  Temperature: %.1f\n", cfg.LLM.Temperature)
	fmt.Printf("  Max Tokens: %d\n", cfg.LLM.MaxTokens)
	fmt.Printf("  OpenAI Model: %s\n", cfg.LLM.OpenAI.Model)
	fmt.Printf("  Anthropic Model: %s (key %s)\n", cfg.LLM.Anthropic.Model, keyState(cfg.LLM.Anthropic.APIKey))
	fmt.Printf("  Ollama Model: %s\n", cfg.LLM.Ollama.Model)
	fmt.Println()

	fmt.Println(ui.Bold.Render("Server:"))
	fmt.Printf("  Address: %s\n", cfg.Server.Addr)
	fmt.Printf("  Allowed Origins: %s\n", strings.Join(cfg.Server.AllowedOrigins, ", "))
	fmt.Println()

	fmt.Println(ui.Bold.Render("Knowledge:"))
	fmt.Printf("  Directory: %s\n", cfg.Knowledge.Dir)
	fmt.Printf("  Ignore Patterns: %d configured\n", len(cfg.Knowledge.Ignore))
	fmt.Printf("  Database: %s\n", cfg.Database.Path)

	return nil
}

func keyState(key string) string {
	if key == "" {
		return ui.Warning.Render("not set")
	}
	return ui.Success.Render("set")
}
