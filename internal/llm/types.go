package llm

import "context"

// Provider represents a text-completion provider
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOllama    Provider = "ollama"
)

// Request represents a completion request
type Request struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	JSONMode    bool // Force JSON output (supported by Ollama)
}

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response represents a completion response
type Response struct {
	Content      string
	Model        string
	Provider     Provider
	InputTokens  int
	OutputTokens int
	FinishReason string
}

// Client is the interface for completion providers
type Client interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
	Name() Provider
	Available() bool
}
