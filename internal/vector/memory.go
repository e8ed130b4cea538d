package vector

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an append-only, RWMutex-guarded chunk collection with a
// linear-scan cosine search. The zero value is not usable; call NewMemoryStore.
type MemoryStore struct {
	mu          sync.RWMutex
	chunks      []DocumentChunk
	initialized bool

	// generation changes on every Clear.
	generation uint64
}

// NewMemoryStore creates an empty, uninitialised store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// AddChunk appends a single chunk.
func (s *MemoryStore) AddChunk(chunk DocumentChunk) {
	s.AddChunks([]DocumentChunk{chunk})
}

// AddChunks appends chunks, preserving their order.
func (s *MemoryStore) AddChunks(chunks []DocumentChunk) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range chunks {
		s.chunks = append(s.chunks, c.clone())
	}
}

// Load appends chunks and marks the store initialised under one lock, so
// readers never observe a half-finished bulk load.
func (s *MemoryStore) Load(chunks []DocumentChunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(chunks)
}

// Generation identifies the current contents; it changes on every Clear.
func (s *MemoryStore) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// LoadGeneration is Load for a bulk load that started at generation. It does
// nothing and returns false when the store was cleared since then or is
// already initialised, so a stale or concurrent load never duplicates chunks.
func (s *MemoryStore) LoadGeneration(generation uint64, chunks []DocumentChunk) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != generation || s.initialized {
		return false
	}
	s.load(chunks)
	return true
}

func (s *MemoryStore) load(chunks []DocumentChunk) {
	for _, c := range chunks {
		s.chunks = append(s.chunks, c.clone())
	}
	s.initialized = true
}

// Search scores every chunk against query, keeps those at or above
// opts.Threshold, and returns them by descending score. Equal scores keep
// insertion order.
func (s *MemoryStore) Search(query []float32, opts SearchOptions) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]SearchResult, 0, len(s.chunks))
	for i, c := range s.chunks {
		if len(c.Embedding) != len(query) {
			return nil, fmt.Errorf("%w: chunk %q (#%d) has %d dimensions, query has %d",
				ErrDimensionMismatch, c.ID, i, len(c.Embedding), len(query))
		}

		score := CosineSimilarity(query, c.Embedding)
		if score < opts.Threshold {
			continue
		}
		results = append(results, SearchResult{Chunk: c, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if opts.TopK > 0 && len(results) > opts.TopK {
		results = results[:opts.TopK]
	}
	return results, nil
}

// All returns a deep copy of every chunk in insertion order.
func (s *MemoryStore) All() []DocumentChunk {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]DocumentChunk, len(s.chunks))
	for i, c := range s.chunks {
		out[i] = c.clone()
	}
	return out
}

// IsInitialized reports whether a bulk load has completed.
func (s *MemoryStore) IsInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// SetInitialized records the outcome of a bulk load.
func (s *MemoryStore) SetInitialized(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = v
}

// Size returns the number of stored chunks.
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Clear drops every chunk and marks the store uninitialised.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	s.initialized = false
	s.generation++
}

// CosineSimilarity returns dot(a,b)/(|a|*|b|), or 0 when either norm is zero.
// The vectors must have equal length.
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
