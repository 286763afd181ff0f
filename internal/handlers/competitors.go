package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/foxxcyber/compwatch/internal/database"
	"github.com/foxxcyber/compwatch/internal/middleware"
	"github.com/foxxcyber/compwatch/internal/models"
	"github.com/foxxcyber/compwatch/internal/services"
)

const maxSearchRadiusMeters = 50000

// SearchCompetitors looks up nearby businesses of a type and returns them as candidates
// POST /api/competitors/search
func (h *Handler) SearchCompetitors(c *fiber.Ctx) error {
	var req models.CompetitorSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.BusinessType = strings.TrimSpace(req.BusinessType)
	req.Location = strings.TrimSpace(req.Location)
	if req.BusinessType == "" || req.Location == "" {
		return Error(c, fiber.StatusBadRequest, "business_type and location are required")
	}
	if req.Radius < 0 || req.Radius > maxSearchRadiusMeters {
		return Error(c, fiber.StatusBadRequest, "radius must be between 0 and 50000 meters")
	}

	if h.places == nil {
		return Error(c, fiber.StatusServiceUnavailable, "maps service is not configured")
	}

	places, err := h.places.SearchCompetitors(c.UserContext(), req.BusinessType, req.Location, req.Radius)
	if err != nil {
		return handleMapsError(c, err)
	}

	userID := middleware.GetUserID(c)
	ids := make(map[string]int, len(places))

	if req.SaveToDB {
		for _, p := range places {
			placeID := p.PlaceID
			comp, err := h.store.CreateCompetitor(c.UserContext(), userID, &models.ManualCompetitorRequest{
				Name:          p.Name,
				Address:       p.FormattedAddress,
				Category:      services.PrimaryCategory(p.Types),
				GooglePlaceID: &placeID,
				Latitude:      &p.Latitude,
				Longitude:     &p.Longitude,
				DistanceKm:    p.DistanceKm,
				IsSelected:    false,
			})
			if err != nil {
				h.logger.Error("save search hit", zap.String("place_id", p.PlaceID), zap.Error(err))
				return Error(c, fiber.StatusInternalServerError, "failed to save competitors")
			}
			ids[p.PlaceID] = comp.ID
		}
	} else {
		placeIDs := make([]string, 0, len(places))
		for _, p := range places {
			placeIDs = append(placeIDs, p.PlaceID)
		}
		ids, err = h.store.FindCompetitorIDsByPlace(c.UserContext(), userID, placeIDs)
		if err != nil {
			return Error(c, fiber.StatusInternalServerError, "failed to match saved competitors")
		}
	}

	candidates := make([]models.CandidateCompetitor, 0, len(places))
	for _, p := range places {
		id := models.PlaceIDPrefix + p.PlaceID
		if existing, ok := ids[p.PlaceID]; ok {
			id = strconv.Itoa(existing)
		}
		candidates = append(candidates, models.CandidateCompetitor{
			ID:       id,
			Name:     p.Name,
			Category: services.PrimaryCategory(p.Types),
			Address:  p.FormattedAddress,
			Distance: p.DistanceKm,
			PlaceID:  p.PlaceID,
			Rating:   p.Rating,
			Selected: true,
		})
	}

	return SuccessWithMeta(c, candidates, len(candidates), len(candidates), 0)
}

// BulkSelect marks saved competitors selected or unselected
// POST /api/competitors/bulk-select
func (h *Handler) BulkSelect(c *fiber.Ctx) error {
	var req models.BulkSelectRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if len(req.SelectedIDs) == 0 && len(req.UnselectedIDs) == 0 {
		return Error(c, fiber.StatusBadRequest, "selected_ids or unselected_ids is required")
	}

	selected := make(map[int]bool, len(req.SelectedIDs))
	for _, id := range req.SelectedIDs {
		if id <= 0 {
			return Error(c, fiber.StatusBadRequest, "invalid competitor id")
		}
		selected[id] = true
	}
	for _, id := range req.UnselectedIDs {
		if id <= 0 {
			return Error(c, fiber.StatusBadRequest, "invalid competitor id")
		}
		if selected[id] {
			return Error(c, fiber.StatusBadRequest, "a competitor cannot be both selected and unselected")
		}
	}

	userID := middleware.GetUserID(c)
	result, err := h.store.BulkSelect(c.UserContext(), userID, req.SelectedIDs, req.UnselectedIDs)
	if err != nil {
		h.logger.Error("bulk select", zap.Int("user_id", userID), zap.Error(err))
		return Error(c, fiber.StatusInternalServerError, "failed to update selection")
	}

	return Success(c, result)
}

// ManuallyAddCompetitor creates a competitor from a committed candidate.
// Entries that carry a Google place id are enriched with the place website.
// POST /api/competitors/manually-add
func (h *Handler) ManuallyAddCompetitor(c *fiber.Ctx) error {
	var req models.ManualCompetitorRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return Error(c, fiber.StatusBadRequest, "name is required")
	}

	if req.GooglePlaceID != nil && *req.GooglePlaceID != "" && h.places != nil && strings.TrimSpace(req.Website) == "" {
		h.enrichFromPlace(c, &req)
	}

	userID := middleware.GetUserID(c)
	if req.DistanceKm == nil && req.Latitude != nil && req.Longitude != nil {
		if profile, err := h.store.GetBusinessProfile(c.UserContext(), userID); err == nil && profile.Latitude != nil && profile.Longitude != nil {
			d := services.HaversineKm(*profile.Latitude, *profile.Longitude, *req.Latitude, *req.Longitude)
			req.DistanceKm = &d
		}
	}

	comp, err := h.store.CreateCompetitor(c.UserContext(), userID, &req)
	if err != nil {
		h.logger.Error("create competitor", zap.Int("user_id", userID), zap.Error(err))
		return Error(c, fiber.StatusInternalServerError, "failed to create competitor")
	}

	return Created(c, comp)
}

func (h *Handler) enrichFromPlace(c *fiber.Ctx, req *models.ManualCompetitorRequest) {
	details, err := h.places.GetPlaceDetails(c.UserContext(), *req.GooglePlaceID)
	if err != nil {
		h.logger.Warn("place details", zap.String("place_id", *req.GooglePlaceID), zap.Error(err))
		return
	}

	req.Website = details.Website
	if strings.TrimSpace(req.Address) == "" {
		req.Address = details.FormattedAddress
	}
	if req.Latitude == nil || req.Longitude == nil {
		req.Latitude = &details.Latitude
		req.Longitude = &details.Longitude
	}
	if strings.TrimSpace(req.Category) == "" {
		req.Category = services.PrimaryCategory(details.Types)
	}
}

// ListCompetitors returns the caller's competitors
// GET /api/competitors?include_unselected=true
func (h *Handler) ListCompetitors(c *fiber.Ctx) error {
	params := &models.CompetitorListParams{
		IncludeUnselected: c.QueryBool("include_unselected", false),
	}

	competitors, err := h.store.ListCompetitors(c.UserContext(), middleware.GetUserID(c), params)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list competitors")
	}

	return SuccessWithMeta(c, competitors, len(competitors), len(competitors), 0)
}

// GetCompetitor returns a single competitor
func (h *Handler) GetCompetitor(c *fiber.Ctx) error {
	id, ok := competitorID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid competitor id")
	}

	comp, err := h.store.GetCompetitor(c.UserContext(), middleware.GetUserID(c), id)
	if err != nil {
		return competitorError(c, err, "failed to get competitor")
	}

	return Success(c, comp)
}

// UpdateCompetitor edits a competitor
func (h *Handler) UpdateCompetitor(c *fiber.Ctx) error {
	id, ok := competitorID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid competitor id")
	}

	var req models.UpdateCompetitorRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return Error(c, fiber.StatusBadRequest, "name cannot be empty")
		}
		req.Name = &name
	}

	comp, err := h.store.UpdateCompetitor(c.UserContext(), middleware.GetUserID(c), id, &req)
	if err != nil {
		return competitorError(c, err, "failed to update competitor")
	}

	return Success(c, comp)
}

// DeleteCompetitor removes a competitor with its menus and archived snapshots
func (h *Handler) DeleteCompetitor(c *fiber.Ctx) error {
	id, ok := competitorID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid competitor id")
	}

	keys, err := h.store.DeleteCompetitor(c.UserContext(), middleware.GetUserID(c), id)
	if err != nil {
		return competitorError(c, err, "failed to delete competitor")
	}

	h.purgeSnapshots(c, keys)

	return Success(c, fiber.Map{"message": "competitor deleted"})
}

func (h *Handler) purgeSnapshots(c *fiber.Ctx, keys []string) {
	if h.archive == nil || len(keys) == 0 {
		return
	}
	if err := h.archive.Delete(c.UserContext(), keys); err != nil {
		h.logger.Warn("purge menu snapshots", zap.Strings("keys", keys), zap.Error(err))
	}
}

func competitorID(c *fiber.Ctx) (int, bool) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func competitorError(c *fiber.Ctx, err error, fallback string) error {
	if errors.Is(err, database.ErrCompetitorNotFound) {
		return Error(c, fiber.StatusNotFound, "competitor not found")
	}
	return Error(c, fiber.StatusInternalServerError, fallback)
}

func handleMapsError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNoResults):
		return Error(c, fiber.StatusNotFound, "no results found for the given location")
	case errors.Is(err, services.ErrInvalidAPIKey):
		return Error(c, fiber.StatusServiceUnavailable, "maps service is not configured")
	case errors.Is(err, services.ErrRequestDenied):
		return Error(c, fiber.StatusBadGateway, "maps request was denied")
	case errors.Is(err, services.ErrOverQueryLimit):
		return Error(c, fiber.StatusTooManyRequests, "maps api quota exceeded")
	case errors.Is(err, services.ErrInvalidRequest):
		return Error(c, fiber.StatusBadRequest, "invalid maps request")
	default:
		return Error(c, fiber.StatusInternalServerError, "failed to process maps request")
	}
}
