package delivery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trialfinder-backend/internal/patient/domain"
	"trialfinder-backend/internal/patient/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockPatientUsecase struct {
	mock.Mock
}

func (m *mockPatientUsecase) GetProfile(ctx context.Context, userID string) (*domain.PatientProfile, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*domain.PatientProfile)
	return p, args.Error(1)
}

func (m *mockPatientUsecase) UpsertProfile(ctx context.Context, userID string, p domain.PatientProfile) (*domain.PatientProfile, error) {
	args := m.Called(ctx, userID, p)
	out, _ := args.Get(0).(*domain.PatientProfile)
	return out, args.Error(1)
}

func (m *mockPatientUsecase) SaveStudy(ctx context.Context, userID string, in usecase.SaveStudyInput) (*domain.SavedStudy, error) {
	args := m.Called(ctx, userID, in)
	s, _ := args.Get(0).(*domain.SavedStudy)
	return s, args.Error(1)
}

func (m *mockPatientUsecase) ListStudies(ctx context.Context, userID, query string) ([]domain.SavedStudy, error) {
	args := m.Called(ctx, userID, query)
	s, _ := args.Get(0).([]domain.SavedStudy)
	return s, args.Error(1)
}

func (m *mockPatientUsecase) GetStudy(ctx context.Context, userID, trialID string) (*domain.SavedStudy, error) {
	args := m.Called(ctx, userID, trialID)
	s, _ := args.Get(0).(*domain.SavedStudy)
	return s, args.Error(1)
}

func (m *mockPatientUsecase) DeleteStudy(ctx context.Context, userID, trialID string) error {
	return m.Called(ctx, userID, trialID).Error(0)
}

func setupRouter(uc usecase.PatientUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log, _ := test.NewNullLogger()
	h := NewPatientHandler(uc, log)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("userID", "u1"); c.Next() })
	r.GET("/api/profile", h.GetProfile)
	r.PUT("/api/profile", h.UpdateProfile)
	r.GET("/api/saved-studies", h.ListStudies)
	r.POST("/api/saved-studies", h.SaveStudy)
	r.GET("/api/saved-studies/:trialId", h.GetStudy)
	r.DELETE("/api/saved-studies/:trialId", h.DeleteStudy)
	return r
}

func TestPatientHandler(t *testing.T) {
	uc := &mockPatientUsecase{}
	uc.On("GetProfile", mock.Anything, "u1").Return(nil, usecase.ErrProfileNotFound).Once()
	uc.On("UpsertProfile", mock.Anything, "u1", mock.MatchedBy(func(p domain.PatientProfile) bool {
		return p.CancerType == "lung" && p.Age != nil && *p.Age == 60
	})).Return(&domain.PatientProfile{UserID: "u1", CancerType: "lung"}, nil)
	uc.On("ListStudies", mock.Anything, "u1", "melanoma").Return([]domain.SavedStudy{{TrialID: "NCT1"}}, nil)
	uc.On("SaveStudy", mock.Anything, "u1", mock.MatchedBy(func(in usecase.SaveStudyInput) bool {
		return in.TrialID == "NCT1" && len(in.Questions) == 2 && in.Answers[1] == "No" && in.MatchResult.Match
	})).Return(&domain.SavedStudy{ID: "u1_NCT1"}, nil)
	uc.On("SaveStudy", mock.Anything, "u1", mock.MatchedBy(func(in usecase.SaveStudyInput) bool {
		return in.TrialID == ""
	})).Return(nil, usecase.ErrTrialIDRequired)
	uc.On("GetStudy", mock.Anything, "u1", "NCT404").Return(nil, usecase.ErrStudyNotFound)
	uc.On("DeleteStudy", mock.Anything, "u1", "NCT1").Return(nil)
	uc.On("DeleteStudy", mock.Anything, "u1", "NCT9").Return(errors.New("firestore unavailable"))

	r := setupRouter(uc)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		want     int
		wantBody string
	}{
		{"profile missing", http.MethodGet, "/api/profile", "", http.StatusNotFound, "Profile not found"},
		{"profile update", http.MethodPut, "/api/profile", `{"cancerType":"lung","age":"60"}`, http.StatusOK, `"cancerType":"lung"`},
		{"profile bad age", http.MethodPut, "/api/profile", `{"age":"sixty"}`, http.StatusBadRequest, "invalid request body"},
		{"list", http.MethodGet, "/api/saved-studies?q=melanoma", "", http.StatusOK, `"total":1`},
		{"save", http.MethodPost, "/api/saved-studies",
			`{"trialId":"NCT1","questions":["Q1",{"text":"Q2"}],"answers":[true,false],"matchResult":{"match":true,"explanation":"ok"}}`,
			http.StatusCreated, `"id":"u1_NCT1"`},
		{"save without trial", http.MethodPost, "/api/saved-studies", `{"trialId":""}`, http.StatusBadRequest, "trialId must be an NCT number"},
		{"get missing", http.MethodGet, "/api/saved-studies/NCT404", "", http.StatusNotFound, "Saved study not found"},
		{"delete", http.MethodDelete, "/api/saved-studies/NCT1", "", http.StatusNoContent, ""},
		{"delete store failure", http.MethodDelete, "/api/saved-studies/NCT9", "", http.StatusInternalServerError, "Failed to delete saved study"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
		})
	}
}
