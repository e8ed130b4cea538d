package cli

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nickcecere/mindhub/internal/config"
	"github.com/nickcecere/mindhub/internal/knowledge"
	"github.com/nickcecere/mindhub/internal/server"
	"github.com/nickcecere/mindhub/internal/ui"
	"github.com/nickcecere/mindhub/internal/watcher"
)

var (
	serveAddr  string
	serveWatch bool
	serveWarm  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat HTTP API",
	Long: `Start the HTTP API used by the website chat widget.

Endpoints:
  POST /api/chat        answer a conversation
  GET  /api/rag/status  store and retrieval diagnostics (?q= overrides the probe query)
  GET  /healthz         liveness

The knowledge directory is seeded on startup when it changed. The vector index
is built on the first request unless --warm is given.

Examples:
  mindhub serve
  mindhub serve --addr :3000 --watch`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "reseed when knowledge files change")
	serveCmd.Flags().BoolVar(&serveWarm, "warm", false, "build the vector index before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	// Long-running: log with timestamps.
	log.SetDefault(ui.NewLogger(os.Stderr, "mindhub"))

	ctx, cancel := signalContext()
	defer cancel()

	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	a.syncKnowledge(ctx)

	chat, err := a.chat()
	if err != nil {
		return err
	}

	if serveWarm {
		go func() {
			if err := a.rag.Initialize(ctx); err != nil && ctx.Err() == nil {
				log.Warn("Vector index warm-up failed", "error", err)
			}
		}()
	}

	if serveWatch {
		go a.watch(ctx, time.Second)
	}

	srvCfg := cfg.Server
	if serveAddr != "" {
		srvCfg.Addr = serveAddr
	}

	srv := server.New(srvCfg, chat, a.rag, a.store, a.ragCfg)
	return srv.Run(ctx)
}

// watch reseeds on knowledge changes and drops the vector index so the next
// query rebuilds it.
func (a *app) watch(ctx context.Context, debounce time.Duration) {
	loader, err := a.loader("")
	if err != nil {
		log.Error("Cannot watch knowledge directory", "error", err)
		return
	}

	w := watcher.New(loader, a.store,
		watcher.WithDebounceTime(debounce),
		watcher.WithEventCallback(func(event, path string) {
			log.Debug("Knowledge file event", "event", event, "path", path)
		}),
		watcher.WithReloadCallback(func(ctx context.Context, res *knowledge.SeedResult) {
			a.rag.Reset()
		}),
	)

	if err := w.Start(ctx); err != nil && ctx.Err() == nil {
		log.Error("Watcher error", "error", err)
	}
}
