package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nickcecere/mindhub/internal/rag"
)

// FallbackReply is returned when the model produced no text.
const FallbackReply = "Entschuldigung, ich konnte keine Antwort generieren."

// ErrNoQuestion means the conversation has no user message to answer.
var ErrNoQuestion = errors.New("conversation contains no user message")

// Retriever finds knowledge relevant to a question.
type Retriever interface {
	Retrieve(ctx context.Context, query string, cfg rag.Config) (*rag.Context, error)
}

// ChatRequest is one turn of the visitor conversation.
type ChatRequest struct {
	Messages  []Message
	FirstName string
	LastName  string
	Gender    string // "f" selects the formal address when LastName is set
}

// ChatResponse is the assistant's answer with its citations.
type ChatResponse struct {
	Message  string                `json:"message"`
	Sources  []rag.SourceReference `json:"sources"`
	Language string                `json:"language"`
}

// ChatService answers visitor questions about the site owner.
type ChatService struct {
	llm       Service
	retriever Retriever
	opts      CompletionOptions
	rag       rag.Config
}

// NewChatService creates a chat service.
func NewChatService(llm Service, retriever Retriever, opts CompletionOptions, ragCfg rag.Config) *ChatService {
	return &ChatService{
		llm:       llm,
		retriever: retriever,
		opts:      opts,
		rag:       ragCfg,
	}
}

// Reply retrieves context for the latest user message and asks the model
// for an answer in the persona of the portfolio assistant.
func (c *ChatService) Reply(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	question := lastUserMessage(req.Messages)
	if question == "" {
		return nil, ErrNoQuestion
	}

	knowledge, err := c.retriever.Retrieve(ctx, question, c.rag)
	if err != nil {
		return nil, err
	}

	lang := rag.DetectLanguage(question)
	messages := []Message{{
		Role:    "system",
		Content: SystemPrompt(req, rag.FormatContext(knowledge), lang),
	}}
	for _, m := range req.Messages {
		// Only conversation turns are forwarded; the prompt is ours.
		if m.Role == "user" || m.Role == "assistant" {
			messages = append(messages, m)
		}
	}

	answer, err := c.llm.Complete(ctx, messages, c.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate reply: %w", err)
	}
	if strings.TrimSpace(answer) == "" {
		log.Warn("Model returned an empty reply", "model", c.llm.ModelName())
		answer = FallbackReply
	}

	return &ChatResponse{
		Message:  answer,
		Sources:  rag.ExtractSources(knowledge),
		Language: lang,
	}, nil
}

func lastUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" && strings.TrimSpace(messages[i].Content) != "" {
			return strings.TrimSpace(messages[i].Content)
		}
	}
	return ""
}
