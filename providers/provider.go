// Package providers defines the Provider interface and the shared request
// and response types for the language-model backends the gateway can talk
// to: Anthropic directly, OpenAI, and Anthropic Claude via AWS Bedrock.
package providers

import "context"

// Message role constants.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn sent to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-neutral chat completion request. System carries the
// robot personality prompt; Messages hold the conversation turns.
type Request struct {
	Model       string
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature *float64
}

// Usage carries token consumption reported by a provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the provider-neutral completion result.
type Response struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Model    string `json:"model"`
	Provider string `json:"provider"`
	Usage    Usage  `json:"usage"`
}

// Provider is implemented by every language-model backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (*Response, error)
	SupportsModel(model string) bool
}
