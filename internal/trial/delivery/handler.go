package delivery

import (
	"errors"
	"net/http"
	"strings"

	"trialfinder-backend/internal/trial/dto"
	"trialfinder-backend/internal/trial/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TrialHandler handles trial search and detail requests
type TrialHandler struct {
	trialUsecase usecase.TrialUsecase
	log          logrus.FieldLogger
}

// NewTrialHandler creates a new TrialHandler
func NewTrialHandler(trialUsecase usecase.TrialUsecase, log logrus.FieldLogger) *TrialHandler {
	return &TrialHandler{
		trialUsecase: trialUsecase,
		log:          log.WithField("component", "trial.handler"),
	}
}

// Generate runs one search page
// POST /api/generate
func (h *TrialHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	result, err := h.trialUsecase.Search(c.Request.Context(), usecase.SearchInput{
		Condition:    req.Text,
		Age:          req.Age.Value,
		Location:     req.Location,
		Intervention: req.Intervention,
		PageToken:    req.PageToken,
		PageSize:     req.PageSize,
		SeenIDs:      req.SeenIDs,
		Filters: usecase.Filters{
			Statuses:          req.Filters.Status,
			Phases:            req.Filters.Phase,
			Gender:            req.Filters.Gender,
			MinAge:            req.Filters.MinAge.Value,
			MaxAge:            req.Filters.MaxAge.Value,
			HealthyVolunteers: req.Filters.HealthyVolunteers,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrConditionRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		case errors.Is(err, usecase.ErrNoStudies):
			c.JSON(http.StatusNotFound, gin.H{"error": "No studies found", "detail": err.Error()})
		default:
			h.log.WithError(err).Error("search failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search studies", "detail": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetStudy returns the merged detail of one trial
// GET /api/study/:id
func (h *TrialHandler) GetStudy(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "study id is required"})
		return
	}

	detail, err := h.trialUsecase.GetDetail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrStudyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Study not found"})
			return
		}
		h.log.WithError(err).WithField("trial_id", id).Error("detail fetch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch study"})
		return
	}

	c.JSON(http.StatusOK, detail)
}
