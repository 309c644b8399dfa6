package delivery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"trialfinder-backend/internal/billing/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubCheckout struct {
	err error
}

func (s stubCheckout) CreateSession(_ context.Context, userID, _ string) (*usecase.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &usecase.Session{ID: "cs_" + userID, URL: "https://checkout.test"}, nil
}

func TestCheckout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		uc       usecase.CheckoutUsecase
		want     int
		wantBody string
	}{
		{"ok", stubCheckout{}, http.StatusOK, `"sessionId":"cs_u1"`},
		{"not configured", stubCheckout{err: usecase.ErrNotConfigured}, http.StatusServiceUnavailable, "not available"},
		{"stripe failure", stubCheckout{err: fmt.Errorf("%w: boom", usecase.ErrCheckoutFailed)}, http.StatusBadGateway, "Failed to create"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(func(c *gin.Context) { c.Set("userID", "u1"); c.Next() })
			r.POST("/api/checkout", NewCheckoutHandler(tt.uc).Checkout)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/checkout", nil))
			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
