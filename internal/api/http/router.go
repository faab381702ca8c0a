package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facilityops/maintenance-service/internal/api/http/handlers"
	"github.com/facilityops/maintenance-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Requests       *handlers.RequestsHandler
	Reference      *handlers.ReferenceHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	reference := app.Group("/reference", cfg.AuthMiddleware.Handle)
	reference.Get("/sites", cfg.Reference.ListSites)
	reference.Get("/buildings", cfg.Reference.ListBuildings)
	reference.Get("/floors", cfg.Reference.ListFloors)
	reference.Get("/rooms", cfg.Reference.ListRooms)
	reference.Get("/trades", cfg.Reference.ListTrades)
	reference.Get("/technicians", cfg.Reference.ListTechnicians)
	reference.Get("/problem-types", cfg.Reference.ListProblemTypes)

	requests := app.Group("/service-requests", cfg.AuthMiddleware.Handle)
	requests.Post("/", cfg.Requests.Create)
	requests.Get("/", cfg.Requests.List)
	requests.Get("/:id", cfg.Requests.Get)
	requests.Patch("/:id", cfg.Requests.Update)

	requests.Post("/:id/submit", cfg.Requests.Submit)
	requests.Post("/:id/triage", cfg.Requests.Triage)
	requests.Post("/:id/assign", cfg.Requests.Assign)
	requests.Post("/:id/start", cfg.Requests.Start)
	requests.Post("/:id/complete", cfg.Requests.Complete)
	requests.Post("/:id/close", cfg.Requests.Close)
	requests.Post("/:id/cancel", cfg.Requests.Cancel)

	requests.Get("/:id/audit", cfg.Requests.Audit)
	requests.Post("/:id/comments", cfg.Requests.AddComment)
	requests.Get("/:id/comments", cfg.Requests.ListComments)
	requests.Post("/:id/attachments", cfg.Requests.AddAttachment)
	requests.Get("/:id/attachments", cfg.Requests.ListAttachments)
}
