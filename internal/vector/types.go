// Package vector holds embedded document chunks in memory and answers
// cosine-similarity queries over them.
package vector

import (
	"errors"
	"slices"
)

// ErrDimensionMismatch means the store holds embeddings of more than one
// length, or the query length differs from the stored one. It indicates the
// store was filled from two different models and must not be queried.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Metadata describes where a chunk came from.
type Metadata struct {
	DocumentID string   `json:"documentId"`
	Title      string   `json:"title"`
	Section    string   `json:"section"`
	Category   string   `json:"category,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	ChunkIndex int      `json:"chunkIndex"`
}

// DocumentChunk is one embeddable unit of a content record.
type DocumentChunk struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"-"`
	Metadata  Metadata  `json:"metadata"`
}

func (c DocumentChunk) clone() DocumentChunk {
	c.Embedding = slices.Clone(c.Embedding)
	c.Metadata.Tags = slices.Clone(c.Metadata.Tags)
	return c
}

// Tier names the retrieval strategy that produced a result.
type Tier string

const (
	TierSemantic Tier = "semantic"
	TierRelaxed  Tier = "relaxed"
	TierKeyword  Tier = "keyword"
)

// SearchResult pairs a chunk with its score. Semantic and relaxed scores are
// cosine similarities; keyword scores are weighted hit counts divided by ten.
type SearchResult struct {
	Chunk DocumentChunk `json:"chunk"`
	Score float64       `json:"score"`
	Tier  Tier          `json:"tier,omitempty"`
}

// SearchOptions bounds a similarity search.
type SearchOptions struct {
	// TopK caps the number of results. Zero or less means no cap.
	TopK int

	// Threshold drops results scoring below it.
	Threshold float64
}
