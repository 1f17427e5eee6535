package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nearbuy/nearbuy-api/internal/config"
	"github.com/nearbuy/nearbuy-api/internal/handler"
	"github.com/nearbuy/nearbuy-api/internal/middleware"
	"github.com/nearbuy/nearbuy-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	ListingHandler      *handler.ListingHandler
	OfferHandler        *handler.OfferHandler
	MessagingHandler    *handler.MessagingHandler
	NotificationHandler *handler.NotificationHandler
	RatingHandler       *handler.RatingHandler
	ReportHandler       *handler.ReportHandler
	AdminHandler        *handler.AdminHandler
	UploadHandler       *handler.UploadHandler
	SessionMiddleware   fiber.Handler
	AdminMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	sessionMiddleware := deps.SessionMiddleware
	if sessionMiddleware == nil {
		sessionMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	adminMiddleware := deps.AdminMiddleware
	if adminMiddleware == nil {
		adminMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)
		deps.AuthHandler.RegisterProtected(auth, sessionMiddleware)
	}

	if deps.ListingHandler != nil {
		deps.ListingHandler.RegisterCategories(api.Group("/categories"))

		// Reads stay public, so the session guard and the write limiter are
		// bound per route instead of on the group.
		listings := api.Group("/listings")
		deps.ListingHandler.Register(listings)
		deps.ListingHandler.RegisterProtected(listings, sessionMiddleware, middleware.RateLimit("listings", 30, time.Minute))

		favorites := api.Group("/favorites", sessionMiddleware)
		deps.ListingHandler.RegisterFavorites(favorites)
	}

	if deps.OfferHandler != nil {
		offers := api.Group("/offers", sessionMiddleware, middleware.RateLimit("offers", 30, time.Minute))
		deps.OfferHandler.Register(offers)
	}

	if deps.MessagingHandler != nil {
		threads := api.Group("/threads", sessionMiddleware, middleware.RateLimit("messages", 60, time.Minute))
		deps.MessagingHandler.Register(threads)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", sessionMiddleware)
		deps.NotificationHandler.Register(notifications)
	}

	if deps.RatingHandler != nil {
		ratings := api.Group("/ratings", sessionMiddleware, middleware.RateLimit("ratings", 20, time.Minute))
		deps.RatingHandler.Register(ratings)

		deps.RatingHandler.RegisterPublic(api.Group("/users"))
	}

	if deps.ReportHandler != nil {
		reports := api.Group("/reports", sessionMiddleware, middleware.RateLimit("reports", 10, time.Minute))
		deps.ReportHandler.Register(reports)
	}

	if deps.UploadHandler != nil {
		uploads := api.Group("/uploads", sessionMiddleware, middleware.RateLimit("uploads", 20, time.Minute))
		deps.UploadHandler.Register(uploads)
	}

	if deps.AdminHandler != nil {
		admin := api.Group("/admin", sessionMiddleware, adminMiddleware)
		deps.AdminHandler.Register(admin)
	}
}
