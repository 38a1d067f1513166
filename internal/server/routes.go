package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shortlinks/internal/auth"
	"shortlinks/internal/db"
	"shortlinks/internal/handlers"
	"shortlinks/internal/middleware"
	"shortlinks/internal/shortcode"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(database *db.DB) {
	tokens := auth.NewTokenManager(s.Cfg.JWTSecret, s.Cfg.TokenTTL)
	allocator := shortcode.NewAllocator(database, s.Cfg.ShortCodeLength, s.Cfg.ShortCodeMaxAttempts)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(tokens, database)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(database, s.Cfg, tokens)
	linkHandler := handlers.NewLinkHandler(database, s.Cfg, allocator)
	redirectHandler := handlers.NewRedirectHandler(database)
	statsHandler := handlers.NewStatsHandler(database)
	adminHandler := handlers.NewAdminHandler(database)
	healthHandler := handlers.NewHealthHandler(database)

	// Observability
	s.App.Get("/health", healthHandler.Check)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Public auth routes
	s.App.Post("/register", authHandler.Register)
	s.App.Post("/login", authHandler.Login)
	s.App.Post("/admin/login", authHandler.AdminLogin)

	// User-gated routes
	s.App.Get("/auth-status", authMiddleware.RequireUser, authHandler.AuthStatus)
	s.App.Post("/logout", authMiddleware.RequireUser, authHandler.Logout)
	s.App.Post("/shorten", authMiddleware.RequireUser, linkHandler.Shorten)
	s.App.Get("/my-urls", authMiddleware.RequireUser, linkHandler.MyURLs)
	s.App.Delete("/links/:code", authMiddleware.RequireUser, linkHandler.Delete)

	// Admin-gated routes
	s.App.Delete("/admin/cleanup", authMiddleware.RequireAdmin, adminHandler.Cleanup)
	s.App.Get("/admin/stats", authMiddleware.RequireAdmin, adminHandler.Stats)
	s.App.Get("/admin/urls", authMiddleware.RequireAdmin, adminHandler.ListURLs)
	s.App.Post("/admin/users", authMiddleware.RequireAdmin, adminHandler.CreatePrincipal)
	s.App.Delete("/admin/users/:username", authMiddleware.RequireAdmin, adminHandler.DeactivatePrincipal)

	// Public stats
	s.App.Get("/stats/:code", statsHandler.Stats)

	// Redirect route - must be last (catch-all for codes)
	s.App.Get("/:code", redirectHandler.Redirect)
}
