package delivery

import (
	"errors"
	"net/http"

	"trialfinder-backend/internal/device/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type registerRequest struct {
	Token      string `json:"token" binding:"required"`
	DeviceInfo string `json:"deviceInfo"`
}

type DeviceHandler struct {
	deviceUsecase usecase.DeviceUsecase
	log           logrus.FieldLogger
}

func NewDeviceHandler(deviceUsecase usecase.DeviceUsecase, log logrus.FieldLogger) *DeviceHandler {
	return &DeviceHandler{
		deviceUsecase: deviceUsecase,
		log:           log.WithField("component", "device.handler"),
	}
}

// Register stores a push token for the current user
// POST /api/devices
func (h *DeviceHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	if err := h.deviceUsecase.Register(c.GetString("userID"), req.Token, req.DeviceInfo); err != nil {
		if errors.Is(err, usecase.ErrTokenRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.WithError(err).Error("failed to register device token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register device"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Device registered"})
}

// Unregister removes one of the current user's push tokens
// DELETE /api/devices/:token
func (h *DeviceHandler) Unregister(c *gin.Context) {
	err := h.deviceUsecase.Unregister(c.GetString("userID"), c.Param("token"))
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, usecase.ErrTokenNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
	case errors.Is(err, usecase.ErrTokenRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.WithError(err).Error("failed to unregister device token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unregister device"})
	}
}
