package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/survey-service/internal/api/http/handlers"
	"github.com/spec-kit/survey-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Departments    *handlers.DepartmentsHandler
	Permissions    *handlers.PermissionsHandler
	Surveys        *handlers.SurveysHandler
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.AuthMiddleware
	// Gatherer backs /metrics; nil leaves the route unregistered.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	app.Post("/login", cfg.Auth.Login)

	api := app.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.Optional)
	}

	api.Get("/departments", cfg.Departments.List)
	api.Post("/departments", cfg.Departments.Create)

	api.Get("/permissions", cfg.Permissions.List)
	api.Post("/permissions/save", cfg.Permissions.Save)
	api.Post("/permissions/mail-alert", cfg.Permissions.MailAlert)

	api.Get("/surveys/:id", cfg.Surveys.GetSurvey)
	api.Post("/surveys/:id/submit_response", cfg.Surveys.SubmitResponse)
}
