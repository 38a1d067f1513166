package handlers

import (
	"github.com/gofiber/fiber/v3"

	"shortlinks/internal/db"
)

// HealthHandler serves the liveness probe.
type HealthHandler struct {
	db *db.DB
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(database *db.DB) *HealthHandler {
	return &HealthHandler{db: database}
}

// Check reports service health, including database reachability.
func (h *HealthHandler) Check(c fiber.Ctx) error {
	if err := h.db.Pool.Ping(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "unhealthy",
			"service": "shortlinks",
		})
	}
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "shortlinks",
	})
}
