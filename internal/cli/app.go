package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/nickcecere/mindhub/internal/config"
	"github.com/nickcecere/mindhub/internal/embeddings"
	"github.com/nickcecere/mindhub/internal/knowledge"
	"github.com/nickcecere/mindhub/internal/llm"
	"github.com/nickcecere/mindhub/internal/rag"
	"github.com/nickcecere/mindhub/internal/store"
)

// app bundles the components every long-running command needs.
type app struct {
	cfg      *config.Config
	store    *store.SQLiteStore
	embedder embeddings.Service
	rag      *rag.Service
	ragCfg   rag.Config
}

func openApp(cfg *config.Config) (*app, error) {
	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	emb, err := embeddings.NewService(cfg)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create embedding service: %w", err)
	}

	ragCfg := rag.ConfigFrom(cfg.RAG)
	splitter, err := rag.NewSplitter(cfg.RAG.Splitter, ragCfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	svc := rag.NewService(st, emb,
		rag.WithSplitter(splitter),
		rag.WithInitTimeout(cfg.RAG.InitTimeout),
	)

	return &app{
		cfg:      cfg,
		store:    st,
		embedder: emb,
		rag:      svc,
		ragCfg:   ragCfg,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		log.Warn("Failed to close store", "error", err)
	}
}

func (a *app) chat() (*llm.ChatService, error) {
	model, err := llm.NewService(a.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM service: %w", err)
	}
	return llm.NewChatService(model, a.rag, llm.OptionsFrom(a.cfg), a.ragCfg), nil
}

func (a *app) loader(dir string) (*knowledge.Loader, error) {
	if dir == "" {
		dir = a.cfg.Knowledge.Dir
	}
	return knowledge.NewLoader(dir, knowledge.WithIgnorePatterns(a.cfg.Knowledge.Ignore))
}

// syncKnowledge seeds the store from the knowledge directory when it exists
// and its contents changed. A missing directory leaves the store as is.
func (a *app) syncKnowledge(ctx context.Context) {
	loader, err := a.loader("")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug("No knowledge directory, using stored content", "dir", a.cfg.Knowledge.Dir)
			return
		}
		log.Warn("Knowledge directory unusable", "error", err)
		return
	}

	records, err := loader.Load()
	if err != nil {
		log.Warn("Failed to load knowledge base", "error", err)
		return
	}
	if _, err := knowledge.Seed(ctx, a.store, records, false); err != nil {
		log.Warn("Failed to seed knowledge base", "error", err)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
