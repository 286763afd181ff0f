package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/foxxcyber/compwatch/internal/config"
	"github.com/foxxcyber/compwatch/internal/models"
	"github.com/foxxcyber/compwatch/internal/services"
)

// Store is the persistence layer the handlers need. *database.DB implements it.
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash string, username *string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserLastLogin(ctx context.Context, id int) error
	GetTrackingEnabled(ctx context.Context, userID int) (bool, error)
	SetTrackingEnabled(ctx context.Context, userID int, enabled bool) error

	GetBusinessProfile(ctx context.Context, userID int) (*models.BusinessProfile, error)
	UpsertBusinessProfile(ctx context.Context, userID int, req *models.BusinessProfileRequest) (*models.BusinessProfile, error)

	ListCompetitors(ctx context.Context, userID int, params *models.CompetitorListParams) ([]*models.Competitor, error)
	GetCompetitor(ctx context.Context, userID, id int) (*models.Competitor, error)
	FindCompetitorIDsByPlace(ctx context.Context, userID int, placeIDs []string) (map[string]int, error)
	CreateCompetitor(ctx context.Context, userID int, req *models.ManualCompetitorRequest) (*models.Competitor, error)
	UpdateCompetitor(ctx context.Context, userID, id int, req *models.UpdateCompetitorRequest) (*models.Competitor, error)
	BulkSelect(ctx context.Context, userID int, selectedIDs, unselectedIDs []int) (*models.BulkSelectResult, error)
	DeleteCompetitor(ctx context.Context, userID, id int) ([]string, error)

	SaveMenuBatch(ctx context.Context, batch *models.MenuBatch, retention int) ([]string, error)
	GetLatestMenuBatch(ctx context.Context, userID, competitorID int) (*models.MenuBatch, error)
	ListMenuBatches(ctx context.Context, userID, competitorID, limit int) ([]*models.MenuBatchSummary, error)
}

// PlaceSearcher finds businesses through Google Maps
type PlaceSearcher interface {
	Geocode(ctx context.Context, address string) (*services.GeocodingResult, error)
	SearchCompetitors(ctx context.Context, businessType, location string, radius int) ([]*services.PlaceResult, error)
	GetPlaceDetails(ctx context.Context, placeID string) (*services.PlaceDetails, error)
}

// MenuScraper downloads and parses a competitor menu
type MenuScraper interface {
	Scrape(ctx context.Context, sourceURL string) (*services.ScrapeResult, error)
}

// SnapshotStore archives raw menu documents
type SnapshotStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Delete(ctx context.Context, keys []string) error
}

// Handler holds all handler dependencies
type Handler struct {
	store   Store
	cfg     *config.Config
	logger  *zap.Logger
	places  PlaceSearcher
	scraper MenuScraper
	archive SnapshotStore
	now     func() time.Time
}

// Option configures optional handler dependencies
type Option func(*Handler)

// WithPlaces enables competitor search and place enrichment
func WithPlaces(p PlaceSearcher) Option {
	return func(h *Handler) { h.places = p }
}

// WithScraper enables menu fetching
func WithScraper(s MenuScraper) Option {
	return func(h *Handler) { h.scraper = s }
}

// WithArchive enables raw snapshot archiving
func WithArchive(a SnapshotStore) Option {
	return func(h *Handler) { h.archive = a }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// New creates a new Handler instance
func New(store Store, cfg *config.Config, logger *zap.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ErrorHandler is a custom error handler for Fiber
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return Error(c, code, message)
}

// APIResponse is a standard API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta contains pagination metadata
type Meta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Success returns a successful response
func Success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(APIResponse{
		Success: true,
		Data:    data,
	})
}

// Created returns a 201 with the created resource
func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(APIResponse{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMeta returns a successful response with pagination
func SuccessWithMeta(c *fiber.Ctx, data interface{}, total, limit, offset int) error {
	return c.JSON(APIResponse{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:  total,
			Limit:  limit,
			Offset: offset,
		},
	})
}

// Error returns an error response
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(APIResponse{
		Success: false,
		Error:   message,
	})
}
