package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nickcecere/mindhub/internal/llm"
	"github.com/nickcecere/mindhub/internal/rag"
)

// DefaultStatusQuery is the probe query of the status endpoint.
const DefaultStatusQuery = "Welche Hobbies hat Björn Riemer?"

const previewLength = 100

// chatRequest is the wire shape sent by the website widget.
type chatRequest struct {
	Messages  []llm.Message `json:"messages"`
	FirstName string        `json:"vorname"`
	LastName  string        `json:"nachname"`
	Gender    string        `json:"geschlecht"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	resp, err := s.chat.Reply(r.Context(), llm.ChatRequest{
		Messages:  req.Messages,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    req.Gender,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

type statusResponse struct {
	Timestamp   string          `json:"timestamp"`
	Database    databaseStatus  `json:"database"`
	VectorStore vectorStatus    `json:"vectorStore"`
	TestQuery   *testQueryReply `json:"testQuery,omitempty"`
}

type databaseStatus struct {
	DocumentCount int      `json:"documentCount"`
	Sections      []string `json:"sections"`
	Error         string   `json:"error,omitempty"`
}

type vectorStatus struct {
	Initialized    bool   `json:"initialized"`
	ChunkCount     int    `json:"chunkCount"`
	Initialization string `json:"initialization,omitempty"`
	Error          string `json:"error,omitempty"`
}

type testQueryReply struct {
	Query          string        `json:"query"`
	FoundDocuments int           `json:"foundDocuments"`
	Documents      []testQueryHit `json:"documents"`
	Error          string        `json:"error,omitempty"`
}

type testQueryHit struct {
	Title          string  `json:"title"`
	Section        string  `json:"section"`
	Score          float64 `json:"score"`
	Tier           string  `json:"tier"`
	ContentPreview string  `json:"contentPreview"`
}

// handleStatus reports on the store and the vector index, initialising the
// index if needed and running a probe query. Failures are reported in the
// body; the status code stays 200.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := statusResponse{Timestamp: time.Now().UTC().Format(time.RFC3339)}

	if n, err := s.catalog.Count(ctx); err != nil {
		resp.Database.Error = err.Error()
	} else {
		resp.Database.DocumentCount = n
		sections, err := s.catalog.Sections(ctx)
		if err != nil {
			resp.Database.Error = err.Error()
		}
		resp.Database.Sections = sections
	}

	st := s.retriever.Status()
	if !st.Initialized {
		if err := s.retriever.Initialize(ctx); err != nil {
			resp.VectorStore.Initialization = "failed"
			resp.VectorStore.Error = err.Error()
		} else {
			resp.VectorStore.Initialization = "ok"
		}
		st = s.retriever.Status()
	}
	resp.VectorStore.Initialized = st.Initialized
	resp.VectorStore.ChunkCount = st.Chunks

	if st.Initialized {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			query = DefaultStatusQuery
		}
		resp.TestQuery = s.probe(r, query)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) probe(r *http.Request, query string) *testQueryReply {
	reply := &testQueryReply{Query: query, Documents: []testQueryHit{}}

	found, err := s.retriever.Retrieve(r.Context(), query, s.ragCfg)
	if err != nil {
		reply.Error = err.Error()
		return reply
	}

	reply.FoundDocuments = len(found.Chunks)
	for _, hit := range found.Chunks {
		reply.Documents = append(reply.Documents, testQueryHit{
			Title:          hit.Chunk.Metadata.Title,
			Section:        hit.Chunk.Metadata.Section,
			Score:          hit.Score,
			Tier:           string(hit.Tier),
			ContentPreview: preview(hit.Chunk.Content),
		})
	}
	return reply
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) > previewLength {
		runes = runes[:previewLength]
	}
	return string(runes) + "..."
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"rag":    s.retriever.Status(),
	})
}

// compile-time check that the retrieval service fits.
var _ Retriever = (*rag.Service)(nil)
