package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/projecthub-api/internal/config"
	"github.com/noah-isme/projecthub-api/internal/handler"
	"github.com/noah-isme/projecthub-api/internal/middleware"
	"github.com/noah-isme/projecthub-api/internal/models"
	"github.com/noah-isme/projecthub-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler          *handler.AuthHandler
	ProjectHandler       *handler.ProjectHandler
	SupervisorHandler    *handler.SupervisorHandler
	AdminProjectHandler  *handler.AdminProjectHandler
	AdminStudentHandler  *handler.AdminStudentHandler
	AdminOverviewHandler *handler.AdminOverviewHandler
	AdminActivityHandler *handler.AdminActivityHandler
	SeedHandler          *handler.SeedHandler
	DatabasePing         handler.Pinger
	JWTMiddleware        fiber.Handler
	// RateLimitStorage shares limiter counters between instances when set.
	RateLimitStorage fiber.Storage
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.DatabasePing))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}

	limit := func(scope string) fiber.Handler {
		return middleware.RateLimit(middleware.RateLimitConfig{
			Scope:   scope,
			Max:     cfg.RateLimitMax,
			Window:  cfg.RateLimitWindow,
			Storage: deps.RateLimitStorage,
		})
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		deps.AuthHandler.Register(auth, limit("login"))
		deps.AuthHandler.RegisterProtected(auth, jwtMiddleware)
	}

	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api.Group("/internal/seed"))
	}

	if deps.SupervisorHandler != nil {
		deps.SupervisorHandler.Register(api.Group("/supervisors", jwtMiddleware))
	}

	if deps.ProjectHandler != nil {
		deps.ProjectHandler.Register(api.Group("/projects", jwtMiddleware), limit("project_create"))
	}

	admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
	if deps.AdminOverviewHandler != nil {
		deps.AdminOverviewHandler.Register(admin)
	}
	if deps.AdminProjectHandler != nil {
		deps.AdminProjectHandler.Register(admin.Group("/projects"))
	}
	if deps.AdminStudentHandler != nil {
		deps.AdminStudentHandler.Register(admin.Group("/students"))
	}
	if deps.AdminActivityHandler != nil {
		deps.AdminActivityHandler.Register(admin.Group("/activity"))
	}
}
