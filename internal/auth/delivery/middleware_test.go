package delivery

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authdomain "trialfinder-backend/internal/auth/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubAuth struct {
	principals map[string]*authdomain.Principal
}

func (s *stubAuth) ValidateToken(token string) (*authdomain.Principal, error) {
	if p, ok := s.principals[token]; ok {
		return p, nil
	}
	return nil, errors.New("invalid")
}

func (s *stubAuth) GenerateToken(authdomain.Principal, time.Duration) (string, error) {
	return "", nil
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := &stubAuth{principals: map[string]*authdomain.Principal{
		"patient":  {UserID: "p1", Role: authdomain.RolePatient},
		"pharmacy": {UserID: "ph1", Role: authdomain.RolePharmacy},
		"admin":    {UserID: "a1", Role: authdomain.RoleAdmin},
	}}

	r := gin.New()
	g := r.Group("/", AuthMiddleware(auth), RequireRole(authdomain.RolePharmacy))
	g.GET("/pharmacy", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString("userID")})
	})
	return r
}

func TestRoleGuard(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"bad scheme", "Basic pharmacy", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"wrong role", "Bearer patient", http.StatusForbidden},
		{"matching role", "Bearer pharmacy", http.StatusOK},
		{"admin passes", "Bearer admin", http.StatusOK},
	}

	r := newRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/pharmacy", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireRole_WithoutAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireRole(authdomain.RolePatient), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
