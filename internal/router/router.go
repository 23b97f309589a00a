package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/collabflow/collabflow-api/internal/config"
	"github.com/collabflow/collabflow-api/internal/handler"
	"github.com/collabflow/collabflow-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	NotificationHandler *handler.NotificationHandler
	CommentHandler      *handler.CommentHandler
	MessageHandler      *handler.MessageHandler
	ReactionHandler     *handler.ReactionHandler
	TeamHandler         *handler.TeamHandler
	IssueHandler        *handler.IssueHandler
	WorkspaceHandler    *handler.WorkspaceHandler
	SearchHandler       *handler.SearchHandler
	AnalyticsHandler    *handler.AnalyticsHandler
	AttachmentHandler   *handler.AttachmentHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	}, jwtMiddleware)

	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(api.Group("/notifications"))
	}
	if deps.CommentHandler != nil {
		deps.CommentHandler.Register(api.Group("/comments"))
	}
	if deps.MessageHandler != nil {
		deps.MessageHandler.Register(api.Group("/messages"))
	}
	if deps.ReactionHandler != nil {
		deps.ReactionHandler.Register(api.Group("/reactions"))
	}
	if deps.TeamHandler != nil {
		deps.TeamHandler.Register(api.Group("/teams"))
	}
	if deps.IssueHandler != nil {
		deps.IssueHandler.Register(api.Group("/issues"))
	}
	if deps.WorkspaceHandler != nil {
		deps.WorkspaceHandler.Register(api)
	}
	if deps.SearchHandler != nil {
		deps.SearchHandler.Register(api.Group("/search"))
	}
	if deps.AnalyticsHandler != nil {
		deps.AnalyticsHandler.Register(api.Group("/analytics"))
	}
	if deps.AttachmentHandler != nil {
		deps.AttachmentHandler.Register(api.Group("/attachments"))
	}
}
