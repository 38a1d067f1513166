package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"

	"shortlinks/internal/auth"
	"shortlinks/internal/db"
	"shortlinks/internal/metrics"
	"shortlinks/internal/models"
)

// CookieName is the HTTP-only cookie carrying the assertion. A bearer
// Authorization header is accepted everywhere the cookie is.
const CookieName = "auth_token"

const principalKey = "principal"

// PrincipalSource is the slice of the credential store the middleware needs.
type PrincipalSource interface {
	GetPrincipalByUsername(ctx context.Context, role, username string) (*models.Principal, error)
}

// AuthMiddleware validates presented assertions and binds the resolved
// principal into the request scope.
type AuthMiddleware struct {
	tokens *auth.TokenManager
	store  PrincipalSource
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(tokens *auth.TokenManager, store PrincipalSource) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, store: store}
}

// RequireUser gates an endpoint on a valid user assertion.
func (m *AuthMiddleware) RequireUser(c fiber.Ctx) error {
	return m.require(c, models.RoleUser)
}

// RequireAdmin gates an endpoint on a valid admin assertion.
func (m *AuthMiddleware) RequireAdmin(c fiber.Ctx) error {
	return m.require(c, models.RoleAdmin)
}

// require runs the dual-layer check: signature/expiry/role on the
// assertion itself, then the live store cross-check of the embedded
// secret. The role check happens inside Validate, before any store
// lookup, so probes can't learn which identity namespace they hit.
func (m *AuthMiddleware) require(c fiber.Ctx, role string) error {
	claims, err := m.tokens.Validate(tokenFromRequest(c), role)
	if err != nil {
		return reject(c, err)
	}

	principal, err := m.store.GetPrincipalByUsername(c.Context(), role, claims.Username)
	if err != nil {
		if errors.Is(err, db.ErrPrincipalNotFound) {
			return reject(c, auth.ErrRevoked)
		}
		slog.Error("auth store lookup failed", "role", role, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	if err := auth.CheckPrincipal(principal, claims); err != nil {
		return reject(c, err)
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// Principal returns the authenticated principal bound to this request,
// or nil outside an authenticated scope.
func Principal(c fiber.Ctx) *models.Principal {
	p, _ := c.Locals(principalKey).(*models.Principal)
	return p
}

// tokenFromRequest extracts the assertion from the Authorization header,
// falling back to the session cookie.
func tokenFromRequest(c fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		// A present but non-bearer header fails validation as malformed.
		return header
	}
	return c.Cookies(CookieName)
}

// reject answers every authentication failure with the same body. The
// distinction between invalid, expired, wrong-role, and revoked goes to
// logs and metrics only, never to the client.
func reject(c fiber.Ctx, err error) error {
	reason := failureReason(err)
	metrics.RecordAuthFailure(reason)
	slog.Info("rejected authentication attempt", "reason", reason, "path", c.Path())

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Authentication required",
	})
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, auth.ErrExpiredToken):
		return "expired"
	case errors.Is(err, auth.ErrWrongRole):
		return "wrong_role"
	case errors.Is(err, auth.ErrRevoked):
		return "revoked"
	default:
		return "invalid_token"
	}
}
