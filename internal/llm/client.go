package llm

import (
	"context"
)

// CompletionRequest describes a single chat-style completion call.
// Two call sites exist: SQL translation (low temperature, JSON output)
// and result summarization (moderate temperature, free text).
type CompletionRequest struct {
	System      string  // system instruction
	Prompt      string  // user message
	Temperature float64 // sampling temperature
	MaxTokens   int     // response token budget, 0 means the client default
	ForceJSON   bool    // constrain output to a single JSON object
}

// Completion represents the response from the AI service
type Completion struct {
	Text         string `json:"text"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// Client interface for AI service integration
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config holds configuration for LLM clients
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout int
}
