package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nickcecere/mindhub/internal/config"
	"github.com/nickcecere/mindhub/internal/llm"
	"github.com/nickcecere/mindhub/internal/ui"
)

var (
	askFirstName string
	askLastName  string
	askGender    string
	askJSON      bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the assistant a question",
	Long: `Answer a single question the way the website chat does: retrieve
knowledge, build the persona prompt and call the configured LLM.

Examples:
  mindhub ask "Welche Projekte hat Björn gebaut?"
  mindhub ask "What does Björn do for fun?" --json

  # Formal address (Sie) for a visitor with a last name
  mindhub ask "Wo hat Björn gearbeitet?" --first-name Anna --last-name Schmidt --gender f`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askFirstName, "first-name", "", "visitor first name")
	askCmd.Flags().StringVar(&askLastName, "last-name", "", "visitor last name")
	askCmd.Flags().StringVar(&askGender, "gender", "", "visitor gender (m, f)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the response as JSON")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	cfg := config.Get()

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

	req := llm.ChatRequest{
		Messages:  []llm.Message{{Role: "user", Content: question}},
		FirstName: askFirstName,
		LastName:  askLastName,
		Gender:    askGender,
	}

	var resp *llm.ChatResponse
	err = withSpinner("Thinking", func() error {
		var err error
		resp, err = chat.Reply(ctx, req)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("answer generation failed: %w", err)
	}

	if askJSON {
		return printJSON(resp)
	}

	fmt.Println(ui.Header.Render("Answer"))
	fmt.Println()

	rendered, err := renderMarkdown(resp.Message)
	if err != nil {
		fmt.Println(resp.Message)
	} else {
		fmt.Print(rendered)
	}

	if len(resp.Sources) > 0 {
		fmt.Println(ui.HorizontalRule(40))
		fmt.Println(ui.Dim.Render("Sources:"))
		for i, s := range resp.Sources {
			fmt.Printf("  %s %s %s\n",
				ui.Citation.Render(fmt.Sprintf("[%d]", i+1)),
				ui.ResultTitle.Render(s.Title),
				ui.ResultSection.Render(s.Section),
			)
		}
	}

	return nil
}
