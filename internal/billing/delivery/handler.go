package delivery

import (
	"errors"
	"net/http"

	authdelivery "trialfinder-backend/internal/auth/delivery"
	"trialfinder-backend/internal/billing/usecase"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	checkoutUsecase usecase.CheckoutUsecase
}

func NewCheckoutHandler(checkoutUsecase usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{checkoutUsecase: checkoutUsecase}
}

// Checkout starts a Stripe subscription checkout for the pharmacy
// POST /api/checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var email string
	if p := authdelivery.CurrentPrincipal(c); p != nil {
		email = p.Email
	}

	session, err := h.checkoutUsecase.CreateSession(c.Request.Context(), c.GetString("userID"), email)
	if err != nil {
		if errors.Is(err, usecase.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Checkout is not available"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, session)
}
