package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nickcecere/mindhub/internal/config"
	"github.com/nickcecere/mindhub/internal/knowledge"
	"github.com/nickcecere/mindhub/internal/rag"
	"github.com/nickcecere/mindhub/internal/ui"
)

var statusProbe string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show content store and retrieval status",
	Long: `Display the content store statistics and, with --probe, build the vector
index and run a test query, mirroring GET /api/rag/status.

Examples:
  mindhub status
  mindhub status --probe "Welche Hobbies hat Björn Riemer?"`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusProbe, "probe", "", "build the index and run this test query")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	ctx, cancel := signalContext()
	defer cancel()

	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	count, err := a.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}
	sections, err := a.store.Sections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sections: %w", err)
	}
	fingerprint, err := a.store.Meta(ctx, knowledge.FingerprintKey)
	if err != nil {
		log.Warn("Failed to read fingerprint", "error", err)
	}

	fmt.Println(ui.Header.Render("Content Store"))
	fmt.Println()
	fmt.Printf("  %s %s\n", ui.Dim.Render("Database:"), cfg.Database.Path)
	fmt.Printf("  %s %d\n", ui.Dim.Render("Documents:"), count)
	for _, section := range sections {
		docs, err := a.store.ListBySection(ctx, section)
		if err != nil {
			return err
		}
		fmt.Printf("    %s %d\n", ui.ResultSection.Render(section+":"), len(docs))
	}
	if fingerprint != "" {
		fmt.Printf("  %s %s\n", ui.Dim.Render("Fingerprint:"), fingerprint)
	}
	fmt.Printf("  %s %s\n", ui.Dim.Render("Health:"), storeHealth(count, cfg.Knowledge.Dir))
	fmt.Println()

	fmt.Println(ui.Header.Render("Retrieval"))
	fmt.Println()
	fmt.Printf("  %s %s (%s)\n", ui.Dim.Render("Embeddings:"), a.embedder.ModelName(), a.embedder.Provider())
	fmt.Printf("  %s top %d, threshold %.2f, relaxed %.2f\n",
		ui.Dim.Render("Search:"), a.ragCfg.TopK, a.ragCfg.SimilarityThreshold, rag.RelaxedThreshold)

	if statusProbe == "" {
		return nil
	}

	err = withSpinner("Building vector index", func() error {
		return a.rag.Initialize(ctx)
	})
	if err != nil {
		fmt.Printf("  %s %s\n", ui.Dim.Render("Index:"), ui.Error.Render(err.Error()))
		return nil
	}

	st := a.rag.Status()
	fmt.Printf("  %s %d chunks\n", ui.Dim.Render("Index:"), st.Chunks)

	found, err := a.rag.Retrieve(ctx, statusProbe, a.ragCfg)
	if err != nil {
		fmt.Printf("  %s %s\n", ui.Dim.Render("Probe:"), ui.Error.Render(err.Error()))
		return nil
	}
	fmt.Println()
	displayResults(found, false)
	return nil
}

func storeHealth(count int, dir string) string {
	if count > 0 {
		return ui.Success.Render("healthy")
	}
	if _, err := os.Stat(dir); err == nil {
		return ui.Warning.Render("empty (run 'mindhub seed')")
	}
	return ui.Warning.Render("empty (no knowledge directory at " + dir + ")")
}
