// Package server exposes the assistant over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/nickcecere/mindhub/internal/config"
	"github.com/nickcecere/mindhub/internal/llm"
	"github.com/nickcecere/mindhub/internal/rag"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Chatter produces assistant replies.
type Chatter interface {
	Reply(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

// Retriever is the retrieval service as seen by the status endpoint.
type Retriever interface {
	Initialize(ctx context.Context) error
	Retrieve(ctx context.Context, query string, cfg rag.Config) (*rag.Context, error)
	Status() rag.Status
}

// Catalog reports on the content store.
type Catalog interface {
	Count(ctx context.Context) (int, error)
	Sections(ctx context.Context) ([]string, error)
}

// Server is the HTTP front of the assistant.
type Server struct {
	router    *mux.Router
	handler   http.Handler
	http      *http.Server
	chat      Chatter
	retriever Retriever
	catalog   Catalog
	ragCfg    rag.Config
}

// New wires the routes and middleware.
func New(cfg config.ServerConfig, chat Chatter, retriever Retriever, catalog Catalog, ragCfg rag.Config) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		chat:      chat,
		retriever: retriever,
		catalog:   catalog,
		ragCfg:    ragCfg,
	}

	s.setupRoutes()
	s.router.Use(logRequests)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	// CORS wraps the router so preflight requests never reach route matching.
	s.handler = c.Handler(s.router)

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	api.HandleFunc("/rag/status", s.handleStatus).Methods(http.MethodGet)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Stopping HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond))
	})
}
