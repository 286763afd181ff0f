package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/foxxcyber/compwatch/internal/database"
	"github.com/foxxcyber/compwatch/internal/middleware"
	"github.com/foxxcyber/compwatch/internal/models"
)

// GetTrackingStatus reports whether competitor tracking is enabled for the caller
func (h *Handler) GetTrackingStatus(c *fiber.Ctx) error {
	enabled, err := h.store.GetTrackingEnabled(c.Context(), middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return Error(c, fiber.StatusNotFound, "user not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get tracking status")
	}

	return Success(c, models.TrackingStatus{Enabled: enabled})
}

// UpdateTrackingStatus turns competitor tracking on or off
func (h *Handler) UpdateTrackingStatus(c *fiber.Ctx) error {
	var req models.TrackingStatus
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	userID := middleware.GetUserID(c)
	if err := h.store.SetTrackingEnabled(c.Context(), userID, req.Enabled); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return Error(c, fiber.StatusNotFound, "user not found")
		}
		h.logger.Error("set tracking status", zap.Int("user_id", userID), zap.Error(err))
		return Error(c, fiber.StatusInternalServerError, "failed to update tracking status")
	}

	return Success(c, req)
}
