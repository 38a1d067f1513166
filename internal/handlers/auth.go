package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"shortlinks/internal/auth"
	"shortlinks/internal/config"
	"shortlinks/internal/db"
	"shortlinks/internal/metrics"
	"shortlinks/internal/middleware"
	"shortlinks/internal/models"
	"shortlinks/internal/validation"
)

// AuthHandler handles registration, login, and logout.
type AuthHandler struct {
	db     *db.DB
	cfg    *config.Config
	tokens *auth.TokenManager
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(database *db.DB, cfg *config.Config, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{db: database, cfg: cfg, tokens: tokens}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new user account.
func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req credentialsRequest
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "JSON data is required")
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
	if err := h.db.CreatePrincipal(c.Context(), models.RoleUser, principal); err != nil {
		if errors.Is(err, db.ErrDuplicateUsername) {
			return jsonError(c, fiber.StatusConflict, "Username already exists")
		}
		slog.Error("failed to create user", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"username":   principal.Username,
		"created_at": principal.CreatedAt,
	})
}

// Login authenticates a user and issues an assertion.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	return h.login(c, models.RoleUser)
}

// AdminLogin authenticates an admin and issues an assertion.
func (h *AuthHandler) AdminLogin(c fiber.Ctx) error {
	return h.login(c, models.RoleAdmin)
}

// login verifies the password against the role-appropriate store, rotates
// the stored secret, and issues an assertion bound to the fresh value.
// The rotation is what ties the new assertion's validity to this login.
func (h *AuthHandler) login(c fiber.Ctx, role string) error {
	var req credentialsRequest
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "JSON data is required")
	}
	if req.Username == "" || req.Password == "" {
		return jsonError(c, fiber.StatusBadRequest, "Username and password are required")
	}

	principal, err := h.db.GetPrincipalByUsername(c.Context(), role, req.Username)
	if err != nil {
		if errors.Is(err, db.ErrPrincipalNotFound) {
			return h.rejectLogin(c, role, "unknown username")
		}
		slog.Error("login lookup failed", "role", role, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	if !principal.Active || !auth.VerifyPassword(req.Password, principal.PasswordHash) {
		return h.rejectLogin(c, role, "bad credentials or inactive")
	}

	secret, err := auth.GenerateSecret()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	if err := h.db.RotateSecret(c.Context(), role, principal.Username, secret); err != nil {
		slog.Error("secret rotation failed", "role", role, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	token, err := h.tokens.Issue(principal.Username, role, secret)
	if err != nil {
		slog.Error("token signing failed", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	h.setAuthCookie(c, token, h.tokens.TTL())
	metrics.RecordLogin(role)

	return c.JSON(fiber.Map{
		"token":      token,
		"username":   principal.Username,
		"role":       role,
		"expires_at": time.Now().Add(h.tokens.TTL()),
	})
}

// rejectLogin answers all credential failures identically.
func (h *AuthHandler) rejectLogin(c fiber.Ctx, role, reason string) error {
	metrics.RecordAuthFailure("login")
	slog.Info("rejected login", "role", role, "reason", reason)
	return jsonError(c, fiber.StatusUnauthorized, "Invalid username or password")
}

// Logout nulls the caller's secret, revoking every outstanding assertion,
// and clears the cookie.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	principal := middleware.Principal(c)

	if err := h.db.ClearSecret(c.Context(), principal.Role, principal.Username); err != nil {
		slog.Error("failed to clear secret", "role", principal.Role, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	h.setAuthCookie(c, "", -time.Hour)

	return c.JSON(fiber.Map{"message": "Logged out"})
}

// AuthStatus reports the authenticated identity.
func (h *AuthHandler) AuthStatus(c fiber.Ctx) error {
	principal := middleware.Principal(c)
	return c.JSON(fiber.Map{
		"authenticated": true,
		"username":      principal.Username,
	})
}

func (h *AuthHandler) setAuthCookie(c fiber.Ctx, token string, maxAge time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Expires:  time.Now().Add(maxAge),
		MaxAge:   int(maxAge.Seconds()),
		Path:     "/",
		HTTPOnly: true,
		Secure:   !h.cfg.IsDev(),
		SameSite: "Lax",
	})
}
