package routes

import (
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	userService *services.UserService,
	healthHandler *handlers.HealthHandler,
	userHandler *handlers.UserHandler,
	messageHandler *handlers.MessageHandler,
	registry *apps.Registry,
) {
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.Liveness)

	api := app.Group("/api")

	// General API rate limiter, per IP
	api.Use(middleware.RateLimit(cfg.RateLimitPerMinute))

	api.Get("/health", healthHandler.Check)

	// Registration is public; a stricter limiter slows username enumeration
	api.Post("/register", middleware.RateLimit(cfg.RegisterRateLimitPerMinute), userHandler.Register)
	api.Get("/users/search", userHandler.Search)
	api.Get("/pubkey/:user_id", userHandler.GetPubKey)

	// Bearer-protected routes - apply middleware to individual routes
	auth := middleware.BearerAuth(userService)
	api.Post("/pubkey", auth, userHandler.SetPubKey)
	api.Post("/messages", auth, messageHandler.Create)
	api.Get("/messages", auth, messageHandler.List)

	// Plugin routes are mounted under their own prefix, outside /api
	for _, p := range registry.All() {
		p.RegisterRoutes(app.Group("/" + p.ID()))
	}
}
