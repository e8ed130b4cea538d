package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickcecere/mindhub/internal/vector"
)

func chunk(id, title, section, content string, tags ...string) vector.DocumentChunk {
	return vector.DocumentChunk{
		ID:      id,
		Content: content,
		Metadata: vector.Metadata{
			DocumentID: id,
			Title:      title,
			Section:    section,
			Tags:       tags,
		},
	}
}

func TestKeywords(t *testing.T) {
	assert.Equal(t, []string{"ist", "tauchen"}, Keywords("  Wo ist  TAUCHEN "))
	assert.Equal(t, []string{"über"}, Keywords("über zu a"))
	assert.Empty(t, Keywords("ab cd"))
}

func TestKeywordSearchWeights(t *testing.T) {
	chunks := []vector.DocumentChunk{
		chunk("a", "Fotografie", "Hobbies", "Ich tauche gern"),
		chunk("b", "Tauchen", "Hobbies", "Tauchen im Meer", "Tauchen"),
		chunk("c", "Kontakt", "Contact", "E-Mail"),
	}

	got := keywordSearch(chunks, "tauchen", 5)
	require.Len(t, got, 1)
	// title 3 + content 1 + tags 1
	assert.InDelta(t, 0.5, got[0].Score, 1e-9)
	assert.Equal(t, vector.TierKeyword, got[0].Tier)

	got = keywordSearch(chunks, "hobbies tauche", 5)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Chunk.ID)
	// b: section 2 + title 3 + content 1 + tags 1; a: section 2 + content 1
	assert.InDelta(t, 0.7, got[0].Score, 1e-9)
	assert.InDelta(t, 0.3, got[1].Score, 1e-9)
}

func TestKeywordSearchTiesAndTopK(t *testing.T) {
	chunks := []vector.DocumentChunk{
		chunk("first", "x", "Hobbies", "y"),
		chunk("second", "x", "Hobbies", "y"),
		chunk("third", "x", "Hobbies", "y"),
	}

	got := keywordSearch(chunks, "hobbies", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Chunk.ID)
	assert.Equal(t, "second", got[1].Chunk.ID)
}

func TestKeywordSearchShortTokensIgnored(t *testing.T) {
	chunks := []vector.DocumentChunk{chunk("a", "Go", "Skills", "Go und SQL")}
	assert.Empty(t, keywordSearch(chunks, "go", 5))
}
