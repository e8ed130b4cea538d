package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nickcecere/mindhub/internal/config"
	"github.com/nickcecere/mindhub/internal/rag"
	"github.com/nickcecere/mindhub/internal/ui"
)

var (
	searchTopK      int
	searchThreshold float64
	searchContent   bool
	searchPrompt    bool
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Show what retrieval finds for a query",
	Long: `Run the three-tier retrieval (semantic, relaxed, keyword) without calling
the LLM. Useful to tune the similarity threshold and the knowledge files.

Examples:
  mindhub search "Tauchen"
  mindhub search "React Projekte" --top-k 3 --content

  # Show the exact context block injected into the system prompt
  mindhub search "Hobbies" --prompt

  # Lower the threshold for one query
  mindhub search "Musik" --threshold 0.2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearchCmd,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "maximum number of results (default from rag.top_k)")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", -1, "similarity threshold (default from rag.similarity_threshold)")
	searchCmd.Flags().BoolVarP(&searchContent, "content", "c", false, "show chunk content")
	searchCmd.Flags().BoolVar(&searchPrompt, "prompt", false, "print the formatted context block")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	cfg := config.Get()

	ctx, cancel := signalContext()
	defer cancel()

	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	a.syncKnowledge(ctx)

	ragCfg := a.ragCfg
	if searchTopK > 0 {
		ragCfg.TopK = searchTopK
	}
	if searchThreshold >= 0 {
		ragCfg.SimilarityThreshold = searchThreshold
	}

	log.Debug("Starting search", "query", query, "topK", ragCfg.TopK, "threshold", ragCfg.SimilarityThreshold)

	var found *rag.Context
	err = withSpinner("Searching", func() error {
		var err error
		found, err = a.rag.Retrieve(ctx, query, ragCfg)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(found)
	}

	if searchPrompt {
		fmt.Print(rag.FormatContext(found))
		return nil
	}

	if found.Empty() {
		fmt.Println("No results found.")
		return nil
	}

	displayResults(found, searchContent)
	return nil
}

func displayResults(found *rag.Context, showContent bool) {
	fmt.Printf("Found %d results %s:\n\n", len(found.Chunks), ui.FormatTier(string(found.Tier())))

	for i, r := range found.Chunks {
		m := r.Chunk.Metadata
		label := m.Section
		if m.Category != "" {
			label += " / " + m.Category
		}

		fmt.Printf("%s %s %s %s\n",
			ui.Highlight.Render(fmt.Sprintf("[%d]", i+1)),
			ui.ResultTitle.Render(m.Title),
			ui.ResultSection.Render(label),
			ui.FormatScore(r.Score, string(r.Tier)),
		)

		if len(m.Tags) > 0 {
			fmt.Printf("    %s\n", ui.Dim.Render(strings.Join(m.Tags, ", ")))
		}

		if showContent {
			fmt.Println()
			displayHighlighted(r.Chunk.Content, "markdown")
		}

		fmt.Println()
	}

	fmt.Println(ui.Dim.Render("Query language: " + rag.DetectLanguage(found.Query)))
}
