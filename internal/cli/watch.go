package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nickcecere/mindhub/internal/config"
	"github.com/nickcecere/mindhub/internal/knowledge"
	"github.com/nickcecere/mindhub/internal/ui"
	"github.com/nickcecere/mindhub/internal/watcher"
)

var (
	watchNoInitial bool
	watchDebounce  time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Reseed the content store whenever knowledge files change",
	Long: `Watch the knowledge directory and reseed the content store after every
change. A running server started with --watch does this on its own; this
command is for editing knowledge while another process serves it.

Examples:
  mindhub watch
  mindhub watch ./knowledge --no-initial`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatchCmd,
}

func init() {
	watchCmd.Flags().BoolVar(&watchNoInitial, "no-initial", false, "skip the initial seed")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "delay used to batch file events")
}

func runWatchCmd(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	ctx, cancel := signalContext()
	defer cancel()

	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	dir := ""
	if len(args) > 0 {
		dir = args[0]
	}
	loader, err := a.loader(dir)
	if err != nil {
		return err
	}

	w := watcher.New(loader, a.store,
		watcher.WithDebounceTime(watchDebounce),
		watcher.WithEventCallback(func(event, path string) {
			fmt.Printf("%s %s\n", ui.Dim.Render(event), path)
		}),
		watcher.WithReloadCallback(func(ctx context.Context, res *knowledge.SeedResult) {
			fmt.Println(ui.Success.Render(fmt.Sprintf("✓ Reseeded %d documents", res.Documents)))
		}),
	)

	if !watchNoInitial {
		if _, err := w.Reload(ctx); err != nil {
			return fmt.Errorf("initial seed failed: %w", err)
		}
	}

	fmt.Println(ui.Header.Render("Watching for Changes"))
	fmt.Printf("Directory: %s\n", loader.Root())
	fmt.Println("Press Ctrl+C to stop.")
	fmt.Println()

	if err := w.Start(ctx); err != nil && ctx.Err() == nil {
		log.Error("Watcher stopped", "error", err)
		return err
	}
	return nil
}
