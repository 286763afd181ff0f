package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/compwatch/internal/middleware"
)

// Health reports liveness
func (h *Handler) Health(c *fiber.Ctx) error {
	return Success(c, fiber.Map{"status": "ok"})
}

// SetupRoutes registers every API route on app
func (h *Handler) SetupRoutes(app *fiber.App) {
	authRequired := middleware.AuthRequired(h.cfg.JWTSecret)

	app.Get("/health", h.Health)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Get("/me", authRequired, h.GetCurrentUser)

	api.Get("/tracking-status", authRequired, h.GetTrackingStatus)
	api.Put("/tracking-status", authRequired, h.UpdateTrackingStatus)

	api.Get("/business-profile", authRequired, h.GetBusinessProfile)
	api.Put("/business-profile", authRequired, h.UpdateBusinessProfile)

	competitors := api.Group("/competitors", authRequired)
	competitors.Post("/search", h.SearchCompetitors)
	competitors.Post("/bulk-select", h.BulkSelect)
	competitors.Post("/manually-add", h.ManuallyAddCompetitor)
	competitors.Post("/fetch-menu/:id", h.FetchMenu)
	competitors.Get("/get-stored-menu/:id", h.GetStoredMenu)
	competitors.Get("/", h.ListCompetitors)
	competitors.Get("/:id", h.GetCompetitor)
	competitors.Put("/:id", h.UpdateCompetitor)
	competitors.Delete("/:id", h.DeleteCompetitor)
	competitors.Get("/:id/menu-batches", h.ListMenuBatches)
}
