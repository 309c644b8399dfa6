package delivery

import (
	"errors"
	"net/http"

	"trialfinder-backend/internal/eligibility/dto"
	"trialfinder-backend/internal/eligibility/usecase"

	"github.com/gin-gonic/gin"
)

// EligibilityHandler handles screening question and match requests
type EligibilityHandler struct {
	eligibilityUsecase usecase.EligibilityUsecase
}

// NewEligibilityHandler creates a new EligibilityHandler
func NewEligibilityHandler(eligibilityUsecase usecase.EligibilityUsecase) *EligibilityHandler {
	return &EligibilityHandler{
		eligibilityUsecase: eligibilityUsecase,
	}
}

// GenerateQuestions turns eligibility criteria into yes/no questions
// POST /api/openai
func (h *EligibilityHandler) GenerateQuestions(c *gin.Context) {
	var req dto.QuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	questions, err := h.eligibilityUsecase.GenerateQuestions(c.Request.Context(), req.Criteria)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate questions"})
		return
	}

	c.JSON(http.StatusOK, dto.QuestionsResponse{Questions: questions})
}

// Match decides whether the answers satisfy the criteria
// POST /api/match
func (h *EligibilityHandler) Match(c *gin.Context) {
	var req dto.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := h.eligibilityUsecase.Match(c.Request.Context(), req.Questions, req.Answers, req.EligibilityCriteria)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrNoQuestions):
			c.JSON(http.StatusBadRequest, gin.H{"error": "questions are required"})
		case errors.Is(err, usecase.ErrAnswerMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "answers must have one entry per question"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to evaluate eligibility"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
