package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nickcecere/mindhub/internal/llm"
	"github.com/nickcecere/mindhub/internal/rag"
)

const (
	// MCPVersion is the protocol version we support.
	MCPVersion = "2024-11-05"

	ServerName    = "mindhub"
	ServerVersion = "1.0.0"
)

// Retriever looks up knowledge for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, cfg rag.Config) (*rag.Context, error)
}

// Chatter answers a conversation.
type Chatter interface {
	Reply(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

// Server answers MCP requests, one JSON message per line.
type Server struct {
	retriever Retriever
	chat      Chatter
	ragCfg    rag.Config

	reader *bufio.Reader
	writer io.Writer

	initialized bool
}

// Option configures a Server.
type Option func(*Server)

// WithIO replaces stdin and stdout.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(s *Server) {
		s.reader = bufio.NewReader(r)
		s.writer = w
	}
}

// NewServer creates an MCP server. chat may be nil, in which case the ask
// tool is not offered.
func NewServer(retriever Retriever, chat Chatter, ragCfg rag.Config, opts ...Option) *Server {
	s := &Server{
		retriever: retriever,
		chat:      chat,
		ragCfg:    ragCfg,
		reader:    bufio.NewReader(os.Stdin),
		writer:    os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run processes requests until EOF or until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	log.Info("MCP server starting")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := s.reader.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				log.Info("MCP server received EOF, shutting down")
				return nil
			}
			return fmt.Errorf("read request: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var req Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			s.sendError(nil, ErrorCodeParse, "Parse error", err.Error())
			continue
		}

		s.handleRequest(ctx, req)
	}
}

func (s *Server) handleRequest(ctx context.Context, req Request) {
	log.Debug("Received request", "method", req.Method, "id", req.ID)

	var result any
	var err error

	switch req.Method {
	case "initialize":
		result, err = s.handleInitialize(req.Params)
	case "initialized", "notifications/initialized":
		s.initialized = true
		log.Info("MCP server initialized")
		return
	case "tools/list":
		result = s.handleListTools()
	case "tools/call":
		result, err = s.handleCallTool(ctx, req.Params)
		if err != nil {
			s.sendError(req.ID, ErrorCodeInvalidParams, "Invalid params", err.Error())
			return
		}
	case "ping":
		result = map[string]any{}
	default:
		if req.ID == nil {
			// Unknown notifications are ignored.
			return
		}
		s.sendError(req.ID, ErrorCodeMethodNotFound, "Method not found", req.Method)
		return
	}

	if err != nil {
		s.sendError(req.ID, ErrorCodeInternal, "Internal error", err.Error())
		return
	}

	s.sendResult(req.ID, result)
}

func (s *Server) handleInitialize(params json.RawMessage) (*InitializeResult, error) {
	var p InitializeParams
	if params != nil {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
	}

	log.Info("Initializing MCP server",
		"clientName", p.ClientInfo.Name,
		"clientVersion", p.ClientInfo.Version,
		"protocolVersion", p.ProtocolVersion,
	)

	return &InitializeResult{
		ProtocolVersion: MCPVersion,
		Capabilities:    ServerCapabilities{Tools: &ToolsCapability{}},
		ServerInfo:      ServerInfo{Name: ServerName, Version: ServerVersion},
	}, nil
}

func (s *Server) handleListTools() *ListToolsResult {
	tools := []Tool{
		{
			Name:        "mindhub_retrieve",
			Description: "Look up facts about Björn Riemer in the portfolio knowledge base. Returns the matching entries formatted as context.",
			InputSchema: JSONSchema{
				Type: "object",
				Properties: map[string]Property{
					"query": {
						Type:        "string",
						Description: "What to look up, in German or English",
					},
					"top_k": {
						Type:        "number",
						Description: "Maximum number of entries to return",
						Default:     s.ragCfg.TopK,
					},
				},
				Required: []string{"query"},
			},
		},
	}

	if s.chat != nil {
		tools = append(tools, Tool{
			Name:        "mindhub_ask",
			Description: "Ask the portfolio assistant a question and get its answer with sources.",
			InputSchema: JSONSchema{
				Type: "object",
				Properties: map[string]Property{
					"question": {
						Type:        "string",
						Description: "The visitor's question",
					},
				},
				Required: []string{"question"},
			},
		})
	}

	return &ListToolsResult{Tools: tools}
}

func (s *Server) handleCallTool(ctx context.Context, params json.RawMessage) (*CallToolResult, error) {
	var p CallToolParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	log.Debug("Calling tool", "name", p.Name, "arguments", p.Arguments)

	switch p.Name {
	case "mindhub_retrieve":
		return s.toolRetrieve(ctx, p.Arguments), nil
	case "mindhub_ask":
		if s.chat != nil {
			return s.toolAsk(ctx, p.Arguments), nil
		}
	}
	return textResult(fmt.Sprintf("Unknown tool: %s", p.Name), true), nil
}

func (s *Server) toolRetrieve(ctx context.Context, args map[string]any) *CallToolResult {
	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return textResult("Error: query is required", true)
	}

	cfg := s.ragCfg
	switch k := args["top_k"].(type) {
	case float64:
		cfg.TopK = int(k)
	case string:
		if parsed, err := strconv.Atoi(k); err == nil {
			cfg.TopK = parsed
		}
	}

	found, err := s.retriever.Retrieve(ctx, query, cfg)
	if err != nil {
		return textResult(fmt.Sprintf("Error: retrieval failed: %v", err), true)
	}
	var sb strings.Builder
	sb.WriteString(rag.FormatContext(found))
	if sources := rag.ExtractSources(found); len(sources) > 0 {
		fmt.Fprintf(&sb, "Retrieved by %s search. Sources:\n", found.Tier())
		for i, src := range sources {
			fmt.Fprintf(&sb, "[%d] %s (%s): %s\n", i+1, src.Title, src.Section, src.Excerpt)
		}
	}
	return textResult(sb.String(), false)
}

func (s *Server) toolAsk(ctx context.Context, args map[string]any) *CallToolResult {
	question, _ := args["question"].(string)
	if strings.TrimSpace(question) == "" {
		return textResult("Error: question is required", true)
	}

	resp, err := s.chat.Reply(ctx, llm.ChatRequest{
		Messages: []llm.Message{{Role: "user", Content: question}},
	})
	if err != nil {
		return textResult(fmt.Sprintf("Error: %v", err), true)
	}

	var sb strings.Builder
	sb.WriteString(resp.Message)
	if len(resp.Sources) > 0 {
		sb.WriteString("\n\nSources:\n")
		for i, src := range resp.Sources {
			fmt.Fprintf(&sb, "[%d] %s (%s)\n", i+1, src.Title, src.Section)
		}
	}
	return textResult(sb.String(), false)
}

func (s *Server) sendResult(id any, result any) {
	s.send(Response{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) sendError(id any, code int, message, data string) {
	s.send(Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &Error{Code: code, Message: message, Data: data},
	})
}

func (s *Server) send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("Failed to marshal response", "error", err)
		return
	}
	fmt.Fprintln(s.writer, string(data))
}
