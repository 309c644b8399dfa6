package delivery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trialfinder-backend/internal/contact/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubContact struct {
	err error
}

func (s stubContact) Submit(context.Context, usecase.ContactRequest) error {
	return s.err
}

func TestSubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		body     string
		want     int
		wantBody string
	}{
		{"sent", nil, `{"name":"A","email":"a@b.test","message":"hi"}`, http.StatusOK, "Message sent"},
		{"invalid", fmt.Errorf("%w: email is invalid", usecase.ErrInvalidContact), `{}`, http.StatusBadRequest, "email is invalid"},
		{"not configured", usecase.ErrNotConfigured, `{}`, http.StatusServiceUnavailable, "not available"},
		{"delivery failure", fmt.Errorf("%w: refused", usecase.ErrSendFailed), `{}`, http.StatusBadGateway, "Failed to send message"},
		{"malformed", nil, `{`, http.StatusBadRequest, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/api/contact", NewContactHandler(stubContact{err: tt.err}).Submit)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
