package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"trialfinder-backend/pkg/ai"

	"github.com/gin-gonic/gin"
)

// RuntimeConfig is the runtime-configurable LLM state
type RuntimeConfig struct {
	Provider      ai.ProviderType            `json:"provider"`
	ChatProvider  ai.ProviderType            `json:"chat_provider"`
	Available     []ai.ProviderType          `json:"available"`
	Models        map[ai.ProviderType]string `json:"models"`
	OllamaBaseURL string                     `json:"ollama_base_url"`
}

// UpdateLLMSettingsRequest represents the request body for updating LLM settings.
// Every field is optional.
type UpdateLLMSettingsRequest struct {
	Provider      ai.ProviderType            `json:"provider"`
	ChatProvider  ai.ProviderType            `json:"chat_provider"`
	Models        map[ai.ProviderType]string `json:"models"`
	OllamaBaseURL string                     `json:"ollama_base_url"`
}

// SettingsHandler switches providers and models without a restart
type SettingsHandler struct {
	completion *ai.Router
	chat       *ai.Router
}

func NewSettingsHandler(completion, chat *ai.Router) *SettingsHandler {
	return &SettingsHandler{completion: completion, chat: chat}
}

func (h *SettingsHandler) ollama() *ai.OllamaService {
	p, ok := h.completion.Provider(ai.ProviderOllama)
	if !ok {
		return nil
	}
	o, _ := p.(*ai.OllamaService)
	return o
}

func (h *SettingsHandler) snapshot() RuntimeConfig {
	cfg := RuntimeConfig{
		Provider:     h.completion.Active(),
		ChatProvider: h.chat.Active(),
		Available:    h.completion.Available(),
		Models:       map[ai.ProviderType]string{},
	}
	for _, p := range cfg.Available {
		c, _ := h.completion.Provider(p)
		if ms, ok := c.(ai.ModelSetter); ok {
			cfg.Models[p] = ms.Model()
		}
	}
	if o := h.ollama(); o != nil {
		cfg.OllamaBaseURL = o.BaseURL()
	}
	return cfg
}

// GetLLMSettings returns current provider configuration
// GET /api/settings/llm
func (h *SettingsHandler) GetLLMSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.snapshot())
}

// UpdateLLMSettings updates provider configuration at runtime
// PUT /api/settings/llm
func (h *SettingsHandler) UpdateLLMSettings(c *gin.Context) {
	var req UpdateLLMSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Validate everything before applying anything.
	for _, p := range []ai.ProviderType{req.Provider, req.ChatProvider} {
		if p == "" {
			continue
		}
		if _, ok := h.completion.Provider(p); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "provider not available: " + string(p)})
			return
		}
	}
	setters := make(map[ai.ProviderType]ai.ModelSetter, len(req.Models))
	for p, model := range req.Models {
		provider, ok := h.completion.Provider(p)
		ms, settable := provider.(ai.ModelSetter)
		if !ok || !settable || strings.TrimSpace(model) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "model cannot be set for provider: " + string(p)})
			return
		}
		setters[p] = ms
	}
	if req.OllamaBaseURL != "" && !strings.HasPrefix(req.OllamaBaseURL, "http://") && !strings.HasPrefix(req.OllamaBaseURL, "https://") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ollama_base_url must be an http(s) URL"})
		return
	}

	if req.Provider != "" {
		_ = h.completion.SetActive(req.Provider)
	}
	if req.ChatProvider != "" {
		_ = h.chat.SetActive(req.ChatProvider)
	}
	for p, ms := range setters {
		ms.SetModel(strings.TrimSpace(req.Models[p]))
	}
	if req.OllamaBaseURL != "" {
		if o := h.ollama(); o != nil {
			o.SetBaseURL(strings.TrimRight(req.OllamaBaseURL, "/"))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "LLM settings updated successfully",
		"settings": h.snapshot(),
	})
}

// TestOllamaConnection tests if the Ollama server is reachable
// POST /api/settings/llm/test
func (h *SettingsHandler) TestOllamaConnection(c *gin.Context) {
	o := h.ollama()
	if o == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"connected": false, "error": "ollama provider not registered"})
		return
	}

	var req struct {
		OllamaBaseURL string `json:"ollama_base_url"`
	}
	// If no body provided, use current config
	_ = c.ShouldBindJSON(&req)
	if req.OllamaBaseURL == "" {
		req.OllamaBaseURL = o.BaseURL()
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := o.Ping(ctx, req.OllamaBaseURL); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"connected": false,
			"error":     err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connected":       true,
		"ollama_base_url": req.OllamaBaseURL,
	})
}
