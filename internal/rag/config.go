// Package rag turns a visitor question into ranked knowledge snippets and
// formats them for the language model.
package rag

import "github.com/nickcecere/mindhub/internal/config"

// RelaxedThreshold is the similarity floor of the second retrieval tier.
const RelaxedThreshold = 0.1

// Config holds the per-call retrieval settings.
type Config struct {
	TopK                int
	SimilarityThreshold float64
	// ChunkSize and ChunkOverlap only apply to the line splitter.
	ChunkSize    int
	ChunkOverlap int
}

// DefaultConfig returns topK 5, threshold 0.3, chunk size 500, overlap 50.
func DefaultConfig() Config {
	return Config{
		TopK:                config.DefaultTopK,
		SimilarityThreshold: config.DefaultSimilarityThreshold,
		ChunkSize:           config.DefaultChunkSize,
		ChunkOverlap:        config.DefaultChunkOverlap,
	}
}

// ConfigFrom reads the retrieval section of the application config.
func ConfigFrom(c config.RAGConfig) Config {
	return Config{
		TopK:                c.TopK,
		SimilarityThreshold: c.SimilarityThreshold,
		ChunkSize:           c.ChunkSize,
		ChunkOverlap:        c.ChunkOverlap,
	}.withDefaults()
}

// withDefaults fills unset sizes. A zero threshold is a valid setting and is kept.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TopK <= 0 {
		c.TopK = d.TopK
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = 0
	}
	return c
}
