package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"trialfinder-backend/pkg/gemini"
)

// GeminiProvider adapts the Gemini service to Completer.
type GeminiProvider struct {
	svc *gemini.GeminiService
}

func NewGeminiProvider(svc *gemini.GeminiService) *GeminiProvider {
	return &GeminiProvider{svc: svc}
}

func (g *GeminiProvider) Name() string { return string(ProviderGemini) }

func (g *GeminiProvider) SetModel(model string) { g.svc.SetModel(model) }

func (g *GeminiProvider) Model() string { return g.svc.Model() }

func (g *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if g.svc == nil {
		return "", fmt.Errorf("gemini: %w", ErrNotConfigured)
	}

	turns := make([]gemini.Turn, 0, len(req.Messages))
	for _, m := range req.Messages {
		var role genai.Role = genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		turns = append(turns, gemini.Turn{Role: role, Text: m.Content})
	}

	greq := gemini.Request{
		System:      req.System,
		Turns:       turns,
		Temperature: float32(req.Temperature),
		MaxTokens:   int32(req.MaxTokens),
	}
	if req.Schema != nil {
		greq.Schema = toGenaiSchema(req.Schema.Schema)
	}
	return g.svc.Generate(ctx, greq)
}

func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genai.Type(strings.ToUpper(s.Type)),
		Description: s.Description,
		Required:    s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = toGenaiSchema(p)
		}
		out.PropertyOrdering = s.Required
	}
	out.Items = toGenaiSchema(s.Items)
	return out
}
