package ai

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"trialfinder-backend/pkg/gemini"
)

// Config holds AI provider configuration
type Config struct {
	Provider     ProviderType // default provider for structured completions
	ChatProvider ProviderType // provider behind the chat proxy
	Timeout      time.Duration

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	AnthropicAPIKey string
	AnthropicModel  string

	GeminiAPIKey string
	GeminiModel  string

	OllamaBaseURL string // e.g., "http://localhost:11434"
	OllamaModel   string // e.g., "llama3", "mistral"
}

// NewProviders builds every provider the config allows. Ollama is always
// registered since it needs no credentials. "auto" falls back from the first
// hosted provider with a key to Ollama.
func NewProviders(ctx context.Context, cfg Config, log logrus.FieldLogger) map[ProviderType]Completer {
	providers := map[ProviderType]Completer{}

	if cfg.OpenAIAPIKey != "" {
		providers[ProviderOpenAI] = NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.Timeout)
	}
	if cfg.AnthropicAPIKey != "" {
		providers[ProviderAnthropic] = NewAnthropicService(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	}
	if cfg.GeminiAPIKey != "" {
		svc, err := gemini.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.WithError(err).Warn("failed to initialize Gemini provider")
		} else {
			providers[ProviderGemini] = NewGeminiProvider(svc)
		}
	}
	ollama := NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.Timeout)
	providers[ProviderOllama] = ollama

	var hosted Completer
	for _, p := range []ProviderType{ProviderOpenAI, ProviderAnthropic, ProviderGemini} {
		if c, ok := providers[p]; ok {
			hosted = c
			break
		}
	}
	providers[ProviderAuto] = NewFallbackService(hosted, ollama, log)

	return providers
}

// NewRouters returns the completion router and the chat router over a shared
// provider set. A configured provider that is unavailable degrades to "auto".
func NewRouters(ctx context.Context, cfg Config, log logrus.FieldLogger) (completion *Router, chat *Router) {
	providers := NewProviders(ctx, cfg, log)
	completion = newRouterOrAuto(cfg.Provider, providers, log)
	chat = newRouterOrAuto(cfg.ChatProvider, providers, log)
	return completion, chat
}

func newRouterOrAuto(p ProviderType, providers map[ProviderType]Completer, log logrus.FieldLogger) *Router {
	if p == "" {
		p = ProviderAuto
	}
	r, err := NewRouter(p, providers)
	if err != nil {
		log.WithError(err).WithField("provider", p).Warn("provider not configured, using auto")
		r, _ = NewRouter(ProviderAuto, providers)
	}
	return r
}
