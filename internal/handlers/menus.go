package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foxxcyber/compwatch/internal/database"
	"github.com/foxxcyber/compwatch/internal/middleware"
	"github.com/foxxcyber/compwatch/internal/models"
	"github.com/foxxcyber/compwatch/internal/services"
)

const menuPersistTimeout = 15 * time.Second

// FetchMenu scrapes a competitor menu and stores it as a new batch. A batch
// younger than the cache TTL is returned instead unless force_refresh is set.
// POST /api/competitors/fetch-menu/:id
func (h *Handler) FetchMenu(c *fiber.Ctx) error {
	id, ok := competitorID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid competitor id")
	}

	var req models.FetchMenuRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return Error(c, fiber.StatusBadRequest, "invalid request body")
		}
	}
	req.ForceRefresh = req.ForceRefresh || c.QueryBool("force_refresh", false)

	userID := middleware.GetUserID(c)
	comp, err := h.store.GetCompetitor(c.UserContext(), userID, id)
	if err != nil {
		return competitorError(c, err, "failed to get competitor")
	}

	if !req.ForceRefresh {
		latest, err := h.store.GetLatestMenuBatch(c.UserContext(), userID, id)
		switch {
		case err == nil && h.now().Sub(latest.SyncTimestamp) < h.cfg.MenuCacheTTL:
			latest.Cached = true
			return Success(c, latest)
		case err != nil && !errors.Is(err, database.ErrMenuNotFound):
			h.logger.Warn("read cached menu", zap.Int("competitor_id", id), zap.Error(err))
		}
	}

	source := comp.MenuSource()
	if source == "" {
		return Error(c, fiber.StatusUnprocessableEntity, services.ErrNoMenuSource.Error())
	}
	if h.scraper == nil {
		return Error(c, fiber.StatusServiceUnavailable, "menu scraping is not configured")
	}

	scrapeCtx, cancelScrape := context.WithTimeout(c.UserContext(), h.cfg.MenuFetchTimeout)
	defer cancelScrape()

	result, err := h.scraper.Scrape(scrapeCtx, source)
	if err != nil {
		h.logger.Warn("scrape menu", zap.Int("competitor_id", id), zap.String("url", source), zap.Error(err))
		return scrapeError(c, err)
	}

	batch := h.newBatch(comp.ID, result)

	// Archive and save run on their own deadline, not the scrape's
	ctx, cancel := context.WithTimeout(c.UserContext(), menuPersistTimeout)
	defer cancel()

	if h.archive != nil {
		key := services.SnapshotKey(comp.ID, batch.BatchID)
		if err := h.archive.Put(ctx, key, result.Body, result.ContentType); err != nil {
			h.logger.Warn("archive menu snapshot", zap.String("key", key), zap.Error(err))
		} else {
			batch.SnapshotKey = &key
		}
	}

	pruned, err := h.store.SaveMenuBatch(ctx, batch, h.cfg.MenuBatchRetention)
	if err != nil {
		h.logger.Error("save menu batch", zap.Int("competitor_id", id), zap.Error(err))
		if batch.SnapshotKey != nil {
			h.purgeSnapshots(c, []string{*batch.SnapshotKey})
		}
		return Error(c, fiber.StatusInternalServerError, "failed to store menu")
	}
	h.purgeSnapshots(c, pruned)

	h.logger.Info("menu synced",
		zap.Int("competitor_id", id),
		zap.String("batch_id", batch.BatchID),
		zap.String("extractor", batch.Extractor),
		zap.Int("items", len(batch.Items)),
	)

	return Success(c, batch)
}

func (h *Handler) newBatch(competitorID int, result *services.ScrapeResult) *models.MenuBatch {
	batch := &models.MenuBatch{
		BatchID:       uuid.NewString(),
		CompetitorID:  competitorID,
		SourceURL:     result.SourceURL,
		Extractor:     result.Extractor,
		SyncTimestamp: h.now().UTC(),
		Items:         result.Items,
	}

	for i := range batch.Items {
		item := &batch.Items[i]
		item.CompetitorID = competitorID
		item.BatchID = batch.BatchID
		item.SyncTimestamp = batch.SyncTimestamp
		if item.Currency == "" {
			item.Currency = h.cfg.DefaultCurrency
		}
		if item.Availability == "" {
			item.Availability = models.AvailabilityUnknown
		}
		if item.SourceURL == "" {
			item.SourceURL = result.SourceURL
		}
	}

	return batch
}

// GetStoredMenu returns the newest stored batch
// GET /api/competitors/get-stored-menu/:id
func (h *Handler) GetStoredMenu(c *fiber.Ctx) error {
	id, ok := competitorID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid competitor id")
	}

	batch, err := h.store.GetLatestMenuBatch(c.UserContext(), middleware.GetUserID(c), id)
	if err != nil {
		if errors.Is(err, database.ErrMenuNotFound) {
			return Error(c, fiber.StatusNotFound, err.Error())
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get menu")
	}

	return Success(c, batch)
}

// ListMenuBatches returns the batch history of a competitor, newest first
// GET /api/competitors/:id/menu-batches
func (h *Handler) ListMenuBatches(c *fiber.Ctx) error {
	id, ok := competitorID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid competitor id")
	}

	userID := middleware.GetUserID(c)
	if _, err := h.store.GetCompetitor(c.UserContext(), userID, id); err != nil {
		return competitorError(c, err, "failed to get competitor")
	}

	limit := c.QueryInt("limit", 20)
	batches, err := h.store.ListMenuBatches(c.UserContext(), userID, id, limit)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list menu batches")
	}

	return SuccessWithMeta(c, batches, len(batches), limit, 0)
}

func scrapeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Error(c, fiber.StatusGatewayTimeout, "menu fetch timed out")
	case errors.Is(err, services.ErrMenuFetchFailed):
		return Error(c, fiber.StatusBadGateway, err.Error())
	case errors.Is(err, services.ErrInvalidMenuURL),
		errors.Is(err, services.ErrMenuTooLarge),
		errors.Is(err, services.ErrUnsupportedContent),
		errors.Is(err, services.ErrNoMenuItems):
		return Error(c, fiber.StatusUnprocessableEntity, err.Error())
	default:
		return Error(c, fiber.StatusInternalServerError, "failed to fetch menu")
	}
}
