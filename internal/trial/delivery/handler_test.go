package delivery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trialfinder-backend/internal/trial/domain"
	"trialfinder-backend/internal/trial/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTrialUsecase struct {
	mock.Mock
}

func (m *mockTrialUsecase) Search(ctx context.Context, in usecase.SearchInput) (*usecase.SearchResult, error) {
	args := m.Called(ctx, in)
	res, _ := args.Get(0).(*usecase.SearchResult)
	return res, args.Error(1)
}

func (m *mockTrialUsecase) GetDetail(ctx context.Context, id string) (*domain.TrialDetail, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*domain.TrialDetail)
	return res, args.Error(1)
}

func setupRouter(uc usecase.TrialUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log, _ := test.NewNullLogger()
	h := NewTrialHandler(uc, log)
	r := gin.New()
	r.POST("/api/generate", h.Generate)
	r.GET("/api/study/:id", h.GetStudy)
	return r
}

func TestGenerate(t *testing.T) {
	uc := &mockTrialUsecase{}
	uc.On("Search", mock.Anything, mock.MatchedBy(func(in usecase.SearchInput) bool {
		return in.Condition == "melanoma" && in.Age != nil && *in.Age == 45 &&
			len(in.SeenIDs) == 1 && in.Filters.MaxAge != nil && *in.Filters.MaxAge == 70
	})).Return(&usecase.SearchResult{
		Studies:       []domain.TrialSummary{{ID: "NCT1", OriginalTitle: "T", SimplifiedTitle: "S"}},
		NextPageToken: "next",
		HasMore:       true,
	}, nil)
	uc.On("Search", mock.Anything, mock.MatchedBy(func(in usecase.SearchInput) bool { return in.Condition == "rare" })).
		Return(nil, fmt.Errorf("%w: registry API error (500)", usecase.ErrNoStudies))

	r := setupRouter(uc)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"ok", `{"text":"melanoma","age":"45","seenIds":["NCT0"],"filters":{"maxAge":70}}`, http.StatusOK, `"hasMore":true`},
		{"missing text", `{"text":"  "}`, http.StatusBadRequest, `"error":"text is required"`},
		{"bad age", `{"text":"x","age":"old"}`, http.StatusBadRequest, `invalid request body`},
		{"no studies", `{"text":"rare"}`, http.StatusNotFound, `"detail":"no studies found: registry API error (500)"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestGetStudy(t *testing.T) {
	uc := &mockTrialUsecase{}
	uc.On("GetDetail", mock.Anything, "NCT1").Return(&domain.TrialDetail{
		TrialSummary: domain.TrialSummary{ID: "NCT1"},
		LeadSponsor:  "Acme",
	}, nil)
	uc.On("GetDetail", mock.Anything, "NCT404").Return(nil, usecase.ErrStudyNotFound)
	r := setupRouter(uc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/study/NCT1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"leadSponsor":"Acme"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/study/NCT404", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Study not found"}`, w.Body.String())
}
