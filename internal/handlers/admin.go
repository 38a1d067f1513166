package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"shortlinks/internal/auth"
	"shortlinks/internal/db"
	"shortlinks/internal/metrics"
	"shortlinks/internal/models"
	"shortlinks/internal/validation"
)

// AdminHandler handles cleanup, reporting, and principal provisioning.
type AdminHandler struct {
	db *db.DB
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(database *db.DB) *AdminHandler {
	return &AdminHandler{db: database}
}

// Cleanup deletes every link whose computed expiry has passed.
func (h *AdminHandler) Cleanup(c fiber.Ctx) error {
	now := time.Now().UTC()

	deleted, err := h.db.DeleteExpiredLinks(c.Context(), now)
	if err != nil {
		slog.Error("cleanup failed", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error during cleanup")
	}

	metrics.RecordExpiredSwept(deleted)

	return c.JSON(fiber.Map{
		"message":       "Expired URLs cleaned up",
		"deleted_count": deleted,
		"cleanup_time":  now,
	})
}

// Stats returns system-wide aggregates.
func (h *AdminHandler) Stats(c fiber.Ctx) error {
	stats, err := h.db.GetSystemStats(c.Context(), time.Now().UTC())
	if err != nil {
		slog.Error("failed to aggregate system stats", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(stats)
}

// ListURLs lists every link with the shared pagination/sorting grammar.
func (h *AdminHandler) ListURLs(c fiber.Ctx) error {
	opts, err := listOptionsFromQuery(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	links, total, err := h.db.GetAllLinks(c.Context(), opts)
	if err != nil {
		slog.Error("failed to list links", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.JSON(listResponse(links, total, opts))
}

type provisionRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreatePrincipal provisions a new user or admin. This mirrors the
// out-of-band provisioning CLI for deployments where the API is more
// convenient.
func (h *AdminHandler) CreatePrincipal(c fiber.Ctx) error {
	var req provisionRequest
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "JSON data is required")
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if req.Role != models.RoleUser && req.Role != models.RoleAdmin {
		return jsonError(c, fiber.StatusBadRequest, "Role must be \"user\" or \"admin\"")
	}
	if ok, msg := validation.ValidateUsername(req.Username); !ok {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	if ok, msg := validation.ValidatePassword(req.Password); !ok {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	secret, err := auth.GenerateSecret()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	principal := &models.Principal{
		Username:     req.Username,
		PasswordHash: hash,
		Secret:       &secret,
	}
	if err := h.db.CreatePrincipal(c.Context(), req.Role, principal); err != nil {
		if errors.Is(err, db.ErrDuplicateUsername) {
			return jsonError(c, fiber.StatusConflict, "Username already exists")
		}
		slog.Error("failed to provision principal", "role", req.Role, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"username":   principal.Username,
		"role":       req.Role,
		"created_at": principal.CreatedAt,
	})
}

// DeactivatePrincipal soft-disables a principal. Principals are never
// destroyed; an inactive one fails validation regardless of secret match.
func (h *AdminHandler) DeactivatePrincipal(c fiber.Ctx) error {
	username := c.Params("username")
	role := c.Query("role", models.RoleUser)
	if role != models.RoleUser && role != models.RoleAdmin {
		return jsonError(c, fiber.StatusBadRequest, "Role must be \"user\" or \"admin\"")
	}

	if err := h.db.SetPrincipalActive(c.Context(), role, username, false); err != nil {
		if errors.Is(err, db.ErrPrincipalNotFound) {
			return jsonError(c, fiber.StatusNotFound, "Principal not found")
		}
		slog.Error("failed to deactivate principal", "role", role, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.JSON(fiber.Map{"message": "Principal deactivated", "username": username, "role": role})
}
