package delivery

import (
	"errors"
	"net/http"

	"trialfinder-backend/internal/pharmacy/domain"
	"trialfinder-backend/internal/pharmacy/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type registerRequest struct {
	Name string `json:"name" binding:"required"`
}

// PharmacyHandler serves the pharmacy dashboard
type PharmacyHandler struct {
	pharmacyUsecase usecase.PharmacyUsecase
	log             logrus.FieldLogger
}

func NewPharmacyHandler(pharmacyUsecase usecase.PharmacyUsecase, log logrus.FieldLogger) *PharmacyHandler {
	return &PharmacyHandler{
		pharmacyUsecase: pharmacyUsecase,
		log:             log.WithField("component", "pharmacy.handler"),
	}
}

// Register claims a pharmacy name for the current user
// POST /api/pharmacy
func (h *PharmacyHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	p, err := h.pharmacyUsecase.Register(c.Request.Context(), c.GetString("userID"), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidName):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrPharmacyNameTaken), errors.Is(err, domain.ErrPharmacyAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.log.WithError(err).Error("pharmacy registration failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register pharmacy"})
		}
		return
	}

	c.JSON(http.StatusCreated, p)
}

// GET /api/pharmacy
func (h *PharmacyHandler) Get(c *gin.Context) {
	p, err := h.pharmacyUsecase.Get(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.fail(c, err, "Failed to load pharmacy")
		return
	}
	c.JSON(http.StatusOK, p)
}

// Studies lists saved studies sponsored by the caller's pharmacy
// GET /api/pharmacy/studies
func (h *PharmacyHandler) Studies(c *gin.Context) {
	studies, err := h.pharmacyUsecase.Studies(c.Request.Context(), c.GetString("userID"), c.Query("q"))
	if err != nil {
		h.fail(c, err, "Failed to load sponsored studies")
		return
	}
	c.JSON(http.StatusOK, gin.H{"studies": studies, "total": len(studies)})
}

func (h *PharmacyHandler) fail(c *gin.Context, err error, message string) {
	if errors.Is(err, usecase.ErrPharmacyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pharmacy not registered"})
		return
	}
	h.log.WithError(err).Error(message)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}
