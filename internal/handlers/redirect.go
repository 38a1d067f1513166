package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"shortlinks/internal/db"
	"shortlinks/internal/metrics"
	"shortlinks/internal/validation"
)

// RedirectHandler handles code-to-destination redirects.
type RedirectHandler struct {
	db *db.DB
}

// NewRedirectHandler creates a new redirect handler.
func NewRedirectHandler(database *db.DB) *RedirectHandler {
	return &RedirectHandler{db: database}
}

// Redirect resolves a short code and issues a 302 to its destination,
// recording the access first so the redirect implies the click landed.
// Absent and expired codes are indistinguishable to this path: both 404,
// neither touches the counters.
func (h *RedirectHandler) Redirect(c fiber.Ctx) error {
	code := c.Params("code")
	if !validation.ValidateCode(code) {
		metrics.RecordRedirect(metrics.OutcomeMiss)
		return jsonError(c, fiber.StatusNotFound, "Short URL not found")
	}

	link, err := h.db.GetLinkByCode(c.Context(), code)
	if err != nil {
		if errors.Is(err, db.ErrLinkNotFound) {
			metrics.RecordRedirect(metrics.OutcomeMiss)
			return jsonError(c, fiber.StatusNotFound, "Short URL not found")
		}
		slog.Error("redirect lookup failed", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	if link.IsExpired(time.Now()) {
		metrics.RecordRedirect(metrics.OutcomeExpired)
		return jsonError(c, fiber.StatusNotFound, "Short URL not found")
	}

	if err := h.db.RecordAccess(c.Context(), link.ID); err != nil {
		// The link may have been swept between lookup and update.
		if errors.Is(err, db.ErrLinkNotFound) {
			metrics.RecordRedirect(metrics.OutcomeMiss)
			return jsonError(c, fiber.StatusNotFound, "Short URL not found")
		}
		slog.Error("failed to record access", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	metrics.RecordRedirect(metrics.OutcomeHit)
	return c.Redirect().Status(fiber.StatusFound).To(link.Destination)
}
