package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicMessager is the slice of the SDK messages service the provider uses.
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type AnthropicClientCreator func(apiKey string) AnthropicMessager

func defaultAnthropicCreator(apiKey string) AnthropicMessager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

var newAnthropicClient AnthropicClientCreator = defaultAnthropicCreator

// AnthropicService implements Completer with the Anthropic Messages API.
type AnthropicService struct {
	messages AnthropicMessager

	mu    sync.RWMutex
	model string
}

// NewAnthropicService creates a new Anthropic provider. An empty key yields a
// provider that reports ErrNotConfigured on every call.
func NewAnthropicService(apiKey, model string) *AnthropicService {
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_20250514)
	}
	s := &AnthropicService{model: model}
	if strings.TrimSpace(apiKey) != "" {
		s.messages = newAnthropicClient(apiKey)
	}
	return s
}

func (a *AnthropicService) Name() string { return string(ProviderAnthropic) }

func (a *AnthropicService) SetModel(model string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.model = model
}

func (a *AnthropicService) Model() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.model
}

// Complete implements Completer. The schema, when present, is appended to the
// system prompt and code fences are stripped from the reply.
func (a *AnthropicService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if a.messages == nil {
		return "", fmt.Errorf("anthropic: %w", ErrNotConfigured)
	}

	system := req.System
	if req.Schema != nil {
		system = strings.TrimSpace(system + "\n\n" + req.Schema.Instruction())
	}

	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.Model()),
		MaxTokens:   maxTokens,
		Messages:    toAnthropicMessages(req.Messages),
		Temperature: anthropic.Float(req.Temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := a.messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyCompletion
	}
	if req.Schema != nil {
		text = StripCodeFences(text)
	}
	return text, nil
}

func toAnthropicMessages(msgs []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
			continue
		}
		out = append(out, anthropic.NewUserMessage(block))
	}
	return out
}
