package handlers

import "github.com/gofiber/fiber/v2"

// RegisterRoutes wires the catalog search core's external interfaces
// (spec §6) onto app.
func (h *Handlers) RegisterRoutes(app *fiber.App) {
	app.Get("/internal/healthz", h.Healthz)

	api := app.Group("/api/v1")
	api.Get("/products", h.Listing)
	api.Get("/products/facets", h.Facets)
	api.Get("/products/:code", h.Detail)

	admin := api.Group("/admin")
	admin.Post("/cache/invalidate", h.InvalidateCache)
}
