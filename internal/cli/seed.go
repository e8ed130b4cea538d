package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nickcecere/mindhub/internal/config"
	"github.com/nickcecere/mindhub/internal/knowledge"
	"github.com/nickcecere/mindhub/internal/ui"
)

var (
	seedDir    string
	seedForce  bool
	seedDryRun bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the YAML knowledge base into the content store",
	Long: `Parse every YAML file in the knowledge directory and replace the stored
content with it. Nothing is written when the content is unchanged since the
last seed, unless --force is given.

Examples:
  mindhub seed
  mindhub seed --dir ./knowledge --force
  mindhub seed --dry-run`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedDir, "dir", "", "knowledge directory (default from knowledge.dir)")
	seedCmd.Flags().BoolVarP(&seedForce, "force", "f", false, "reseed even if unchanged")
	seedCmd.Flags().BoolVarP(&seedDryRun, "dry-run", "d", false, "list documents without writing")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	ctx, cancel := signalContext()
	defer cancel()

	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	loader, err := a.loader(seedDir)
	if err != nil {
		return err
	}

	records, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load knowledge base: %w", err)
	}

	if seedDryRun {
		fmt.Println(ui.Header.Render("Dry Run"))
		fmt.Printf("Directory: %s\n\n", loader.Root())
		for _, r := range records {
			category := r.Category
			if category == "" {
				category = "-"
			}
			fmt.Printf("  %s %s %s\n",
				ui.ResultSection.Render(r.Section),
				ui.ResultTitle.Render(r.Title),
				ui.Dim.Render(category),
			)
		}
		fmt.Printf("\n%d documents, fingerprint %s\n", len(records), knowledge.Fingerprint(records))
		return nil
	}

	res, err := knowledge.Seed(ctx, a.store, records, seedForce)
	if err != nil {
		return err
	}

	if res.Skipped {
		fmt.Println(ui.Dim.Render(fmt.Sprintf("Knowledge base unchanged (%d documents). Use --force to reseed.", res.Documents)))
		return nil
	}

	fmt.Println(ui.Success.Render(fmt.Sprintf("✓ Seeded %d documents from %s", res.Documents, loader.Root())))
	return nil
}
