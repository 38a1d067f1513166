package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"shortlinks/internal/db"
	"shortlinks/internal/models"
	"shortlinks/internal/validation"
)

// StatsHandler serves public per-link statistics.
type StatsHandler struct {
	db *db.DB
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(database *db.DB) *StatsHandler {
	return &StatsHandler{db: database}
}

// Stats returns the statistics for a short code. Expired links answer
// exactly like absent ones.
func (h *StatsHandler) Stats(c fiber.Ctx) error {
	code := c.Params("code")
	if !validation.ValidateCode(code) {
		return jsonError(c, fiber.StatusNotFound, "Short URL not found")
	}

	link, err := h.db.GetLinkByCode(c.Context(), code)
	if err != nil {
		if errors.Is(err, db.ErrLinkNotFound) {
			return jsonError(c, fiber.StatusNotFound, "Short URL not found")
		}
		slog.Error("stats lookup failed", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	if link.IsExpired(time.Now()) {
		return jsonError(c, fiber.StatusNotFound, "Short URL not found")
	}

	return c.JSON(models.StatsResponse{
		ShortCode:    link.Code,
		Destination:  link.Destination,
		Permanent:    link.Permanent,
		ClickCount:   link.ClickCount,
		CreatedAt:    link.CreatedAt,
		ExpiresAt:    link.ExpiresAt,
		LastAccessed: link.LastAccessed,
	})
}
