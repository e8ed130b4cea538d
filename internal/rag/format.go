package rag

import (
	"fmt"
	"strings"

	"github.com/nickcecere/mindhub/internal/vector"
)

const (
	// NoContextMessage is returned by FormatContext when nothing was retrieved.
	NoContextMessage = "Keine relevanten Informationen in der Wissensbasis gefunden."

	contextHeader = "Relevante Informationen aus der Wissensbasis:\n\n"

	excerptLength = 150
)

// Context is the outcome of one retrieval.
type Context struct {
	Query  string                `json:"query"`
	Chunks []vector.SearchResult `json:"relevantChunks"`
}

// Empty reports whether nothing was retrieved.
func (c *Context) Empty() bool {
	return c == nil || len(c.Chunks) == 0
}

// Tier returns the tier that produced the results, or "" when empty.
func (c *Context) Tier() vector.Tier {
	if c.Empty() {
		return ""
	}
	return c.Chunks[0].Tier
}

// SourceReference is a citation shown next to a generated answer.
type SourceReference struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
	Section    string `json:"section"`
	Category   string `json:"category,omitempty"`
	Excerpt    string `json:"excerpt"`
}

// FormatContext renders the retrieved chunks as the numbered block injected
// into the system prompt.
func FormatContext(c *Context) string {
	if c.Empty() {
		return NoContextMessage
	}

	var b strings.Builder
	b.WriteString(contextHeader)
	for i, r := range c.Chunks {
		m := r.Chunk.Metadata
		label := m.Section
		if m.Category != "" {
			label += ", " + m.Category
		}
		fmt.Fprintf(&b, "[%d] %s (%s)\nInhalt: %s\n\n", i+1, m.Title, label, r.Chunk.Content)
	}
	return b.String()
}

// ExtractSources returns one reference per document in rank order.
func ExtractSources(c *Context) []SourceReference {
	if c.Empty() {
		return []SourceReference{}
	}

	seen := make(map[string]bool, len(c.Chunks))
	sources := make([]SourceReference, 0, len(c.Chunks))
	for _, r := range c.Chunks {
		m := r.Chunk.Metadata
		if seen[m.DocumentID] {
			continue
		}
		seen[m.DocumentID] = true

		sources = append(sources, SourceReference{
			DocumentID: m.DocumentID,
			Title:      m.Title,
			Section:    m.Section,
			Category:   m.Category,
			Excerpt:    excerpt(r.Chunk.Content),
		})
	}
	return sources
}

// excerpt takes the first 150 characters and always appends an ellipsis.
func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) > excerptLength {
		runes = runes[:excerptLength]
	}
	return string(runes) + "..."
}
