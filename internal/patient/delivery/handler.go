package delivery

import (
	"errors"
	"net/http"

	"trialfinder-backend/internal/patient/dto"
	"trialfinder-backend/internal/patient/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PatientHandler serves the patient dashboard: profile and saved studies
type PatientHandler struct {
	patientUsecase usecase.PatientUsecase
	log            logrus.FieldLogger
}

func NewPatientHandler(patientUsecase usecase.PatientUsecase, log logrus.FieldLogger) *PatientHandler {
	return &PatientHandler{
		patientUsecase: patientUsecase,
		log:            log.WithField("component", "patient.handler"),
	}
}

// GET /api/profile
func (h *PatientHandler) GetProfile(c *gin.Context) {
	profile, err := h.patientUsecase.GetProfile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		if errors.Is(err, usecase.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		h.fail(c, err, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// PUT /api/profile
func (h *PatientHandler) UpdateProfile(c *gin.Context) {
	var req dto.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	profile, err := h.patientUsecase.UpsertProfile(c.Request.Context(), c.GetString("userID"), req.ToDomain())
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidProfile) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.fail(c, err, "Failed to save profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ListStudies returns saved studies, newest first. Optional ?q= fuzzy filter.
// GET /api/saved-studies
func (h *PatientHandler) ListStudies(c *gin.Context) {
	studies, err := h.patientUsecase.ListStudies(c.Request.Context(), c.GetString("userID"), c.Query("q"))
	if err != nil {
		h.fail(c, err, "Failed to load saved studies")
		return
	}
	c.JSON(http.StatusOK, dto.SavedStudiesResponse{Studies: studies, Total: len(studies)})
}

// POST /api/saved-studies
func (h *PatientHandler) SaveStudy(c *gin.Context) {
	var req dto.SaveStudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	study, err := h.patientUsecase.SaveStudy(c.Request.Context(), c.GetString("userID"), req.ToInput())
	if err != nil {
		if errors.Is(err, usecase.ErrTrialIDRequired) || errors.Is(err, usecase.ErrAnswerMismatch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.fail(c, err, "Failed to save study")
		return
	}
	c.JSON(http.StatusCreated, study)
}

// GET /api/saved-studies/:trialId
func (h *PatientHandler) GetStudy(c *gin.Context) {
	study, err := h.patientUsecase.GetStudy(c.Request.Context(), c.GetString("userID"), c.Param("trialId"))
	if err != nil {
		if errors.Is(err, usecase.ErrStudyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Saved study not found"})
			return
		}
		h.fail(c, err, "Failed to load saved study")
		return
	}
	c.JSON(http.StatusOK, study)
}

// DELETE /api/saved-studies/:trialId
func (h *PatientHandler) DeleteStudy(c *gin.Context) {
	err := h.patientUsecase.DeleteStudy(c.Request.Context(), c.GetString("userID"), c.Param("trialId"))
	if err != nil {
		if errors.Is(err, usecase.ErrStudyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Saved study not found"})
			return
		}
		h.fail(c, err, "Failed to delete saved study")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PatientHandler) fail(c *gin.Context, err error, message string) {
	h.log.WithError(err).WithField("user_id", c.GetString("userID")).Error(message)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}
