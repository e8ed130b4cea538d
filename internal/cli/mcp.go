package cli

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nickcecere/mindhub/internal/config"
	"github.com/nickcecere/mindhub/internal/mcp"
)

var (
	mcpNoWatch bool
	mcpNoAsk   bool
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server over stdio",
	Long: `Start a Model Context Protocol (MCP) server so AI agents can query the
knowledge base.

The server communicates via stdin/stdout using JSON-RPC 2.0 and provides:
  - mindhub_retrieve: retrieve knowledge base entries for a query
  - mindhub_ask: answer a question with the portfolio assistant

By default, the server also watches the knowledge directory and reseeds on
changes. Use --no-watch to disable this.`,
	RunE: runMcpCmd,
}

func init() {
	mcpCmd.Flags().BoolVar(&mcpNoWatch, "no-watch", false, "disable knowledge directory watching")
	mcpCmd.Flags().BoolVar(&mcpNoAsk, "no-ask", false, "offer retrieval only, without the LLM tool")
}

func runMcpCmd(cmd *cobra.Command, args []string) error {
	// stdout carries the protocol.
	log.SetOutput(os.Stderr)

	cfg := config.Get()

	ctx, cancel := signalContext()
	defer cancel()

	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	a.syncKnowledge(ctx)

	var chat mcp.Chatter
	if !mcpNoAsk {
		c, err := a.chat()
		if err != nil {
			return err
		}
		chat = c
	}

	if !mcpNoWatch {
		go a.watch(ctx, time.Second)
	}

	if err := mcp.NewServer(a.rag, chat, a.ragCfg).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
