package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/triage-service/internal/api/http/handlers"
	"github.com/spec-kit/triage-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Triage         *handlers.TriageHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/token", cfg.Auth.Token)

	v1 := app.Group("/v1", cfg.AuthMiddleware.Handle)
	v1.Post("/triage", cfg.Triage.Triage)
	v1.Post("/priority/score", cfg.Triage.ScorePriority)
	v1.Post("/sla/deadlines", cfg.Triage.MapDeadlines)
	v1.Get("/triage/records", cfg.Triage.ListRecords)
	v1.Get("/triage/records/:request_id", cfg.Triage.GetRecord)
}
