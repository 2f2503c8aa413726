package handlers

import "github.com/gofiber/fiber/v2"

// Healthz is the liveness probe (spec §6): a process that can answer
// at all is live, independent of downstream Postgres/Redis health.
func (h *Handlers) Healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
