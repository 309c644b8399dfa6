package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// ContentGenerator is the part of genai.Models the service calls.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Turn is one message in a conversation.
type Turn struct {
	Role genai.Role
	Text string
}

// Request describes a single generateContent call.
type Request struct {
	System      string
	Turns       []Turn
	Schema      *genai.Schema
	Temperature float32
	MaxTokens   int32
}

var ErrEmptyResponse = errors.New("gemini returned no text")

type GeminiService struct {
	models ContentGenerator

	mu    sync.RWMutex
	model string
}

// NewGeminiService creates a client for the Gemini API.
func NewGeminiService(ctx context.Context, apiKey, model string) (*GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return NewGeminiServiceWithGenerator(client.Models, model), nil
}

// NewGeminiServiceWithGenerator wires an existing generator, used by tests.
func NewGeminiServiceWithGenerator(models ContentGenerator, model string) *GeminiService {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiService{models: models, model: model}
}

func (g *GeminiService) SetModel(model string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.model = model
}

func (g *GeminiService) Model() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.model
}

// Generate runs the request and returns the concatenated text of the first
// candidate. A schema switches the response to application/json.
func (g *GeminiService) Generate(ctx context.Context, req Request) (string, error) {
	contents := make([]*genai.Content, 0, len(req.Turns))
	for _, t := range req.Turns {
		var role genai.Role = genai.RoleUser
		if t.Role == genai.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: req.MaxTokens,
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = req.Schema
	}

	resp, err := g.models.GenerateContent(ctx, g.Model(), contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
