package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Actions *handlers.ActionsHandler
	Tickets *handlers.TicketsHandler
	Stats   *handlers.StatsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/actions", cfg.Actions.Dispatch)

	app.Get("/tickets", cfg.Tickets.ListOpen)
	app.Get("/tickets/:id", cfg.Tickets.Get)
	app.Get("/tickets/:id/transcript", cfg.Tickets.Transcript)
	app.Get("/users/:id/tickets", cfg.Tickets.ForUser)
	app.Post("/channels/:id/messages", cfg.Tickets.LogMessage)

	app.Get("/stats", cfg.Stats.Overview)
	app.Get("/ratings", cfg.Stats.RecentRatings)
}
