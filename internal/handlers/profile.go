package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/foxxcyber/compwatch/internal/database"
	"github.com/foxxcyber/compwatch/internal/middleware"
	"github.com/foxxcyber/compwatch/internal/models"
)

// GetBusinessProfile returns the caller's business profile
func (h *Handler) GetBusinessProfile(c *fiber.Ctx) error {
	profile, err := h.store.GetBusinessProfile(c.Context(), middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, database.ErrProfileNotFound) {
			return Error(c, fiber.StatusNotFound, "business profile not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get business profile")
	}

	return Success(c, profile)
}

// UpdateBusinessProfile creates or replaces the caller's business profile.
// Coordinates are geocoded from the address when the client sends none.
func (h *Handler) UpdateBusinessProfile(c *fiber.Ctx) error {
	var req models.BusinessProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Name) == "" {
		return Error(c, fiber.StatusBadRequest, "business name is required")
	}
	if strings.TrimSpace(req.Industry) == "" {
		return Error(c, fiber.StatusBadRequest, "industry is required")
	}
	if strings.TrimSpace(req.City) == "" && strings.TrimSpace(req.ZipCode) == "" {
		return Error(c, fiber.StatusBadRequest, "city or zip code is required")
	}
	if len(strings.TrimSpace(req.State)) > 2 {
		return Error(c, fiber.StatusBadRequest, "state must be a 2-letter code")
	}

	if (req.Latitude == nil || req.Longitude == nil) && h.places != nil {
		draft := models.BusinessProfile{
			StreetAddress: req.StreetAddress,
			City:          req.City,
			State:         req.State,
			ZipCode:       req.ZipCode,
		}
		geo, err := h.places.Geocode(c.Context(), draft.Location())
		if err != nil {
			h.logger.Warn("geocode business profile", zap.String("location", draft.Location()), zap.Error(err))
		} else {
			req.Latitude = &geo.Latitude
			req.Longitude = &geo.Longitude
		}
	}

	userID := middleware.GetUserID(c)
	profile, err := h.store.UpsertBusinessProfile(c.Context(), userID, &req)
	if err != nil {
		h.logger.Error("upsert business profile", zap.Int("user_id", userID), zap.Error(err))
		return Error(c, fiber.StatusInternalServerError, "failed to save business profile")
	}

	return Success(c, profile)
}
