package rag

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nickcecere/mindhub/internal/store"
)

// Splitter turns one record into the texts that get embedded. The i-th text
// becomes chunk index i.
type Splitter interface {
	Split(rec store.Record) []string
}

// DocumentSplitter keeps each record as a single chunk.
type DocumentSplitter struct{}

// Split returns the record content unchanged.
func (DocumentSplitter) Split(rec store.Record) []string {
	return []string{rec.Content}
}

// LineSplitter packs whole lines into chunks of at most Size runes, repeating
// trailing lines worth about Overlap runes at the start of the next chunk.
// A single line longer than Size becomes its own chunk.
type LineSplitter struct {
	Size    int
	Overlap int
}

// Split packs the record's lines into chunks.
func (s LineSplitter) Split(rec store.Record) []string {
	if rec.Content == "" {
		return nil
	}
	if s.Size <= 0 || utf8.RuneCountInString(rec.Content) <= s.Size {
		return []string{rec.Content}
	}

	var chunks []string
	var current []string
	size := 0

	emit := func(lines []string) {
		if chunk := strings.Join(lines, "\n"); strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, line := range strings.Split(rec.Content, "\n") {
		lineLen := utf8.RuneCountInString(line) + 1

		if size+lineLen > s.Size && len(current) > 0 {
			emit(current)

			overlap, overlapSize := s.overlap(current)
			// Keep progress: never carry the whole previous chunk forward.
			if len(overlap) == len(current) {
				overlap, overlapSize = nil, 0
			}
			current = append([]string(nil), overlap...)
			size = overlapSize
		}

		current = append(current, line)
		size += lineLen
	}

	emit(current)
	return chunks
}

func (s LineSplitter) overlap(lines []string) ([]string, int) {
	if s.Overlap <= 0 {
		return nil, 0
	}

	size := 0
	start := len(lines)
	for start > 0 && size < s.Overlap {
		start--
		size += utf8.RuneCountInString(lines[start]) + 1
	}
	return lines[start:], size
}

// NewSplitter returns the splitter registered under name.
func NewSplitter(name string, cfg Config) (Splitter, error) {
	switch name {
	case "", "document":
		return DocumentSplitter{}, nil
	case "line", "lines":
		cfg = cfg.withDefaults()
		return LineSplitter{Size: cfg.ChunkSize, Overlap: cfg.ChunkOverlap}, nil
	default:
		return nil, fmt.Errorf("unknown splitter: %s", name)
	}
}
