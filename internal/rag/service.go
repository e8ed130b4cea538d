package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/nickcecere/mindhub/internal/embeddings"
	"github.com/nickcecere/mindhub/internal/store"
	"github.com/nickcecere/mindhub/internal/vector"
)

const initKey = "init"

// Service loads the knowledge base into a vector store on first use and
// answers retrieval queries against it.
type Service struct {
	docs     store.Reader
	embedder embeddings.Service
	vectors  *vector.MemoryStore
	splitter Splitter

	initTimeout time.Duration
	group       singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithSplitter replaces the one-chunk-per-record splitter.
func WithSplitter(s Splitter) Option {
	return func(svc *Service) {
		svc.splitter = s
	}
}

// WithInitTimeout bounds the shared initialisation run.
func WithInitTimeout(d time.Duration) Option {
	return func(svc *Service) {
		svc.initTimeout = d
	}
}

// WithVectorStore uses an existing store instead of a fresh one.
func WithVectorStore(vs *vector.MemoryStore) Option {
	return func(svc *Service) {
		svc.vectors = vs
	}
}

// NewService creates a retrieval service.
func NewService(docs store.Reader, embedder embeddings.Service, opts ...Option) *Service {
	s := &Service{
		docs:     docs,
		embedder: embedder,
		vectors:  vector.NewMemoryStore(),
		splitter: DocumentSplitter{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status describes the vector store.
type Status struct {
	Initialized bool `json:"initialized"`
	Chunks      int  `json:"chunks"`
}

// Status reports whether the knowledge base is loaded and how many chunks it holds.
func (s *Service) Status() Status {
	return Status{
		Initialized: s.vectors.IsInitialized(),
		Chunks:      s.vectors.Size(),
	}
}

// Reset empties the vector store so the next call reloads the knowledge base.
func (s *Service) Reset() {
	s.group.Forget(initKey)
	s.vectors.Clear()
	log.Debug("Vector store reset")
}

// Initialize loads and embeds every record once. Concurrent callers share a
// single run; a caller whose ctx ends stops waiting but does not abort the run.
// An empty knowledge base leaves the store uninitialised so a later call retries.
func (s *Service) Initialize(ctx context.Context) error {
	if s.vectors.IsInitialized() {
		return nil
	}

	ch := s.group.DoChan(initKey, func() (any, error) {
		runCtx := context.WithoutCancel(ctx)
		if s.initTimeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(runCtx, s.initTimeout)
			defer cancel()
		}
		return nil, s.load(runCtx)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

func (s *Service) load(ctx context.Context) error {
	if s.vectors.IsInitialized() {
		return nil
	}

	start := time.Now()
	generation := s.vectors.Generation()
	records, err := s.docs.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(records) == 0 {
		log.Warn("Knowledge base is empty, run `mindhub seed` first")
		return nil
	}

	var chunks []vector.DocumentChunk
	var texts []string
	for _, rec := range records {
		tags := rec.TagList()
		for i, text := range s.splitter.Split(rec) {
			chunks = append(chunks, vector.DocumentChunk{
				ID:      fmt.Sprintf("%s-chunk-%d", rec.ID, i),
				Content: text,
				Metadata: vector.Metadata{
					DocumentID: rec.ID,
					Title:      rec.Title,
					Section:    rec.Section,
					Category:   rec.Category,
					Tags:       tags,
					ChunkIndex: i,
				},
			})
			texts = append(texts, text)
		}
	}

	log.Debug("Embedding knowledge base", "documents", len(records), "chunks", len(texts))

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding provider returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	if !s.vectors.LoadGeneration(generation, chunks) {
		log.Debug("Discarding embeddings from a superseded load", "chunks", len(chunks))
		return nil
	}

	log.Info("Vector store initialized",
		"documents", len(records),
		"chunks", len(chunks),
		"model", s.embedder.ModelName(),
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// Retrieve finds the chunks most relevant to query. It tries cosine search at
// cfg.SimilarityThreshold, then at RelaxedThreshold, then keyword scoring,
// returning the first tier that yields anything. Errors are never swallowed
// by a tier change.
func (s *Service) Retrieve(ctx context.Context, query string, cfg Config) (*Context, error) {
	cfg = cfg.withDefaults()

	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}

	result := &Context{Query: query, Chunks: []vector.SearchResult{}}
	if s.vectors.Size() == 0 {
		return result, nil
	}

	queryVec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := s.search(queryVec, cfg.TopK, cfg.SimilarityThreshold, vector.TierSemantic)
	if err != nil {
		return nil, err
	}

	if len(hits) == 0 && cfg.SimilarityThreshold > RelaxedThreshold {
		log.Warn("No semantic hits, relaxing threshold", "from", cfg.SimilarityThreshold, "to", RelaxedThreshold)
		hits, err = s.search(queryVec, cfg.TopK, RelaxedThreshold, vector.TierRelaxed)
		if err != nil {
			return nil, err
		}
	}

	if len(hits) == 0 {
		log.Warn("No relaxed hits, falling back to keywords", "query", query)
		hits = keywordSearch(s.vectors.All(), query, cfg.TopK)
	}

	if len(hits) > 0 {
		result.Chunks = hits
	}

	log.Debug("Retrieved context", "query", query, "results", len(result.Chunks), "tier", result.Tier())
	return result, nil
}

func (s *Service) search(query []float32, topK int, threshold float64, tier vector.Tier) ([]vector.SearchResult, error) {
	hits, err := s.vectors.Search(query, vector.SearchOptions{TopK: topK, Threshold: threshold})
	if err != nil {
		log.Error("Vector search failed", "error", err)
		return nil, err
	}
	for i := range hits {
		hits[i].Tier = tier
	}
	return hits, nil
}
