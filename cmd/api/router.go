package api

import (
	"net/http"

	"trialfinder-backend/internal/auth/delivery"
	authdomain "trialfinder-backend/internal/auth/domain"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	authenticated := delivery.AuthMiddleware(h.authUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Trial discovery (public)
		api.POST("/generate", h.trialHandler.Generate)
		api.GET("/study/:id", h.trialHandler.GetStudy)
		api.POST("/openai", h.eligibilityHandler.GenerateQuestions)
		api.POST("/match", h.eligibilityHandler.Match)
		api.POST("/chatai", h.chatHandler.Chat)
		api.POST("/contact", h.contactHandler.Submit)

		// Patient routes
		patient := api.Group("")
		patient.Use(authenticated, delivery.RequireRole(authdomain.RolePatient))
		if h.patientHandler != nil {
			patient.GET("/profile", h.patientHandler.GetProfile)
			patient.PUT("/profile", h.patientHandler.UpdateProfile)
			patient.GET("/saved-studies", h.patientHandler.ListStudies)
			patient.POST("/saved-studies", h.patientHandler.SaveStudy)
			patient.GET("/saved-studies/:trialId", h.patientHandler.GetStudy)
			patient.DELETE("/saved-studies/:trialId", h.patientHandler.DeleteStudy)
		} else {
			unavailable(patient, "/profile", "/saved-studies", "/saved-studies/:trialId")
		}

		// Pharmacy routes
		pharmacy := api.Group("")
		pharmacy.Use(authenticated, delivery.RequireRole(authdomain.RolePharmacy))
		{
			pharmacy.POST("/checkout", h.checkoutHandler.Checkout)
		}
		if h.pharmacyHandler != nil {
			pharmacy.POST("/pharmacy", h.pharmacyHandler.Register)
			pharmacy.GET("/pharmacy", h.pharmacyHandler.Get)
			pharmacy.GET("/pharmacy/studies", h.pharmacyHandler.Studies)
		} else {
			unavailable(pharmacy, "/pharmacy", "/pharmacy/studies")
		}

		// Push device tokens (any signed-in role)
		devices := api.Group("/devices")
		devices.Use(authenticated)
		if h.deviceHandler != nil {
			devices.POST("", h.deviceHandler.Register)
			devices.DELETE("/:token", h.deviceHandler.Unregister)
		} else {
			unavailable(devices, "", "/:token")
		}

		// Runtime LLM settings
		settings := api.Group("/settings")
		settings.Use(authenticated, delivery.RequireRole(authdomain.RoleAdmin))
		{
			settings.GET("/llm", h.settingsHandler.GetLLMSettings)
			settings.PUT("/llm", h.settingsHandler.UpdateLLMSettings)
			settings.POST("/llm/test", h.settingsHandler.TestOllamaConnection)
		}
	}
}

// unavailable answers every method on paths whose backing store is not configured.
func unavailable(g *gin.RouterGroup, paths ...string) {
	for _, p := range paths {
		g.Any(p, func(c *gin.Context) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Feature not configured"})
		})
	}
}
