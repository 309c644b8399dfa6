package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authdomain "trialfinder-backend/internal/auth/domain"
	authUsecase "trialfinder-backend/internal/auth/usecase"
	"trialfinder-backend/pkg/cache"
	"trialfinder-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*gin.Engine, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:      "router-test-secret",
		RequestTimeout: 5 * time.Second,
		AIProvider:     "ollama",
		ChatProvider:   "ollama",
		LLMTimeout:     time.Second,
		OllamaBaseURL:  "http://127.0.0.1:1",
		OllamaModel:    "llama3",
		CTGovBaseURL:   "http://127.0.0.1:1",
		CTGovTimeout:   time.Second,
		CTGovRateLimit: 5,
		CacheTTL:       time.Minute,
	}
	log, _ := test.NewNullLogger()

	h := NewHandler(context.Background(), Dependencies{
		Config: cfg,
		Log:    log,
		Cache:  cache.NewMemory(16, time.Minute),
	})
	t.Cleanup(func() { _ = h.Close() })
	return h.Engine(), cfg
}

func tokenFor(t *testing.T, cfg *config.Config, role authdomain.Role) string {
	t.Helper()
	token, err := authUsecase.NewAuthUsecase(cfg).GenerateToken(authdomain.Principal{
		UserID: "user-" + string(role),
		Email:  string(role) + "@example.com",
		Role:   role,
	}, time.Hour)
	require.NoError(t, err)
	return token
}

func serve(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoutes_Guards(t *testing.T) {
	r, cfg := newTestServer(t)
	patient := tokenFor(t, cfg, authdomain.RolePatient)
	pharmacy := tokenFor(t, cfg, authdomain.RolePharmacy)
	admin := tokenFor(t, cfg, authdomain.RoleAdmin)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"health is public", http.MethodGet, "/api/health", "", http.StatusOK},
		{"profile needs a token", http.MethodGet, "/api/profile", "", http.StatusUnauthorized},
		{"pharmacy cannot read patient profile", http.MethodGet, "/api/profile", pharmacy, http.StatusForbidden},
		{"profile without firestore", http.MethodGet, "/api/profile", patient, http.StatusServiceUnavailable},
		{"saved study without firestore", http.MethodDelete, "/api/saved-studies/NCT1", patient, http.StatusServiceUnavailable},
		{"patient cannot open pharmacy", http.MethodGet, "/api/pharmacy", patient, http.StatusForbidden},
		{"pharmacy without firestore", http.MethodGet, "/api/pharmacy/studies", pharmacy, http.StatusServiceUnavailable},
		{"admin passes pharmacy guard", http.MethodGet, "/api/pharmacy", admin, http.StatusServiceUnavailable},
		{"checkout without stripe", http.MethodPost, "/api/checkout", pharmacy, http.StatusServiceUnavailable},
		{"devices need a token", http.MethodPost, "/api/devices", "", http.StatusUnauthorized},
		{"devices without database", http.MethodPost, "/api/devices", patient, http.StatusServiceUnavailable},
		{"settings are admin only", http.MethodGet, "/api/settings/llm", pharmacy, http.StatusForbidden},
		{"admin reads settings", http.MethodGet, "/api/settings/llm", admin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.method, tt.path, tt.token, "")
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestRoutes_ContactNotConfigured(t *testing.T) {
	r, _ := newTestServer(t)

	w := serve(r, http.MethodPost, "/api/contact", "", `{"name":"Ana","email":"ana@example.com","message":"Hello"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = serve(r, http.MethodPost, "/api/contact", "", `{"name":"Ana","email":"not-an-email","message":"Hello"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoutes_CorrelationID(t *testing.T) {
	r, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Correlation-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Correlation-ID"))
}

func TestSettings_UpdateLLM(t *testing.T) {
	r, cfg := newTestServer(t)
	admin := tokenFor(t, cfg, authdomain.RoleAdmin)

	t.Run("rejects unknown provider without applying models", func(t *testing.T) {
		w := serve(r, http.MethodPut, "/api/settings/llm", admin, `{"provider":"openai","models":{"ollama":"mistral"}}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		w = serve(r, http.MethodGet, "/api/settings/llm", admin, "")
		var got RuntimeConfig
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "llama3", got.Models["ollama"])
	})

	t.Run("rejects non http base url", func(t *testing.T) {
		w := serve(r, http.MethodPut, "/api/settings/llm", admin, `{"ollama_base_url":"localhost:11434"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("applies model and base url", func(t *testing.T) {
		w := serve(r, http.MethodPut, "/api/settings/llm", admin, `{"chat_provider":"auto","models":{"ollama":"mistral"},"ollama_base_url":"http://ollama:11434/"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body struct {
			Settings RuntimeConfig `json:"settings"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "mistral", body.Settings.Models["ollama"])
		assert.Equal(t, "http://ollama:11434", body.Settings.OllamaBaseURL)
		assert.EqualValues(t, "auto", body.Settings.ChatProvider)
		assert.EqualValues(t, "ollama", body.Settings.Provider)
	})
}

func TestSettings_TestOllamaConnection(t *testing.T) {
	r, cfg := newTestServer(t)
	admin := tokenFor(t, cfg, authdomain.RoleAdmin)

	ollama := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/api/tags" {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer ollama.Close()

	w := serve(r, http.MethodPost, "/api/settings/llm/test", admin, `{"ollama_base_url":"`+ollama.URL+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"connected":true`)
}
