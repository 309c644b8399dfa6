package delivery

import (
	"errors"
	"net/http"

	"trialfinder-backend/internal/contact/usecase"

	"github.com/gin-gonic/gin"
)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type ContactHandler struct {
	contactUsecase usecase.ContactUsecase
}

func NewContactHandler(contactUsecase usecase.ContactUsecase) *ContactHandler {
	return &ContactHandler{contactUsecase: contactUsecase}
}

// Submit relays a contact-form message. Delivery failures are reported, not
// swallowed.
// POST /api/contact
func (h *ContactHandler) Submit(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.contactUsecase.Submit(c.Request.Context(), usecase.ContactRequest{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Message sent"})
	case errors.Is(err, usecase.ErrInvalidContact):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Contact form is not available"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send message"})
	}
}
