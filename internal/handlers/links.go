package handlers

import (
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"shortlinks/internal/config"
	"shortlinks/internal/db"
	"shortlinks/internal/metrics"
	"shortlinks/internal/middleware"
	"shortlinks/internal/models"
	"shortlinks/internal/shortcode"
	"shortlinks/internal/validation"
)

// LinkHandler handles link creation, listing, and deletion.
type LinkHandler struct {
	db        *db.DB
	cfg       *config.Config
	allocator *shortcode.Allocator
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(database *db.DB, cfg *config.Config, allocator *shortcode.Allocator) *LinkHandler {
	return &LinkHandler{db: database, cfg: cfg, allocator: allocator}
}

type shortenRequest struct {
	URL       string `json:"url"`
	Permanent bool   `json:"permanent"`
}

// Shorten creates a new short link for the authenticated user.
func (h *LinkHandler) Shorten(c fiber.Ctx) error {
	var req shortenRequest
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "JSON data is required")
	}
	if req.URL == "" {
		return jsonError(c, fiber.StatusBadRequest, "URL is required")
	}
	if ok, msg := validation.ValidateURL(req.URL); !ok {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	user := middleware.Principal(c)

	link := &models.Link{
		Destination: req.URL,
		UserID:      user.ID,
		Permanent:   req.Permanent,
	}
	if !req.Permanent {
		expires := models.ExpiryFor(time.Now().UTC(), h.cfg.DefaultExpirationMonths)
		link.ExpiresAt = &expires
	}

	if err := h.allocator.Allocate(c.Context(), link); err != nil {
		if errors.Is(err, shortcode.ErrExhausted) {
			slog.Error("short code allocation exhausted", "attempts", h.cfg.ShortCodeMaxAttempts)
			return jsonError(c, fiber.StatusInternalServerError, "Could not generate unique short code")
		}
		slog.Error("failed to create link", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	metrics.RecordLinkCreated()

	return c.Status(fiber.StatusCreated).JSON(models.ShortenResponse{
		ShortCode:   link.Code,
		ShortURL:    h.shortURL(link.Code),
		Destination: link.Destination,
		Permanent:   link.Permanent,
		CreatedAt:   link.CreatedAt,
		ExpiresAt:   link.ExpiresAt,
	})
}

// MyURLs lists the caller's links with pagination and sorting.
func (h *LinkHandler) MyURLs(c fiber.Ctx) error {
	user := middleware.Principal(c)

	opts, err := listOptionsFromQuery(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	links, total, err := h.db.GetLinksByUser(c.Context(), user.ID, opts)
	if err != nil {
		slog.Error("failed to list user links", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.JSON(listResponse(links, total, opts))
}

// Delete removes one of the caller's links by code. Ownership is part of
// the delete predicate, so another user's code reads as not found.
func (h *LinkHandler) Delete(c fiber.Ctx) error {
	code := c.Params("code")
	if !validation.ValidateCode(code) {
		return jsonError(c, fiber.StatusNotFound, "Short URL not found")
	}

	user := middleware.Principal(c)

	if err := h.db.DeleteLinkByCodeForUser(c.Context(), code, user.ID); err != nil {
		if errors.Is(err, db.ErrLinkNotFound) {
			return jsonError(c, fiber.StatusNotFound, "Short URL not found")
		}
		slog.Error("failed to delete link", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.JSON(fiber.Map{"message": "Short URL deleted"})
}

func (h *LinkHandler) shortURL(code string) string {
	return strings.TrimSuffix(h.cfg.BaseURL, "/") + "/" + code
}

// listOptionsFromQuery parses the shared pagination/sorting grammar.
func listOptionsFromQuery(c fiber.Ctx) (db.ListOptions, error) {
	opts := db.ListOptions{
		Page:    fiber.Query(c, "page", 1),
		PerPage: fiber.Query(c, "per_page", 20),
		SortBy:  c.Query("sort_by", "created_at"),
		Order:   c.Query("order", "desc"),
	}
	if !opts.Normalize() {
		return opts, errors.New("invalid sort_by or order; valid sort fields: created_at, expires_at, click_count, short_code")
	}
	return opts, nil
}

func listResponse(links []models.Link, total int64, opts db.ListOptions) models.LinkListResponse {
	if links == nil {
		links = []models.Link{}
	}
	pages := int(math.Ceil(float64(total) / float64(opts.PerPage)))
	return models.LinkListResponse{
		Links: links,
		Pagination: models.Pagination{
			Page:    opts.Page,
			PerPage: opts.PerPage,
			Total:   total,
			Pages:   pages,
			HasNext: opts.Page < pages,
			HasPrev: opts.Page > 1,
		},
		SortBy: opts.SortBy,
		Order:  opts.Order,
	}
}
