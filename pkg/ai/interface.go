package ai

import (
	"context"
	"errors"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation sent to a provider.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is a provider-neutral completion call. When Schema is
// set the provider is asked for JSON conforming to it.
type CompletionRequest struct {
	System      string
	Messages    []Message
	Schema      *ResponseSchema
	Temperature float64
	MaxTokens   int
}

// Completer is the interface every LLM provider implements.
// Implement it to add new providers (OpenAI, Anthropic, Gemini, Ollama, ...).
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Name() string
}

// ModelSetter is implemented by providers whose model can change at runtime.
type ModelSetter interface {
	SetModel(model string)
	Model() string
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderGemini    ProviderType = "gemini"
	ProviderOllama    ProviderType = "ollama"
	ProviderAuto      ProviderType = "auto"
)

var (
	ErrNotConfigured       = errors.New("ai provider not configured")
	ErrProviderUnavailable = errors.New("no AI provider available")
	ErrEmptyCompletion     = errors.New("provider returned an empty completion")
)

// Prompt builds a single-turn request.
func Prompt(system, user string, schema *ResponseSchema) CompletionRequest {
	return CompletionRequest{
		System:      system,
		Messages:    []Message{{Role: RoleUser, Content: user}},
		Schema:      schema,
		Temperature: 0.2,
		MaxTokens:   1024,
	}
}
