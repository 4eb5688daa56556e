package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/folio-go-api/internal/config"
	"github.com/noah-isme/folio-go-api/internal/handler"
	"github.com/noah-isme/folio-go-api/internal/middleware"
	"github.com/noah-isme/folio-go-api/internal/models"
	"github.com/noah-isme/folio-go-api/internal/observability"
	"github.com/noah-isme/folio-go-api/internal/service"
)

// Dependencies groups the handlers and middleware the router wires together.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	ProfileHandler      *handler.ProfileHandler
	ProjectHandler      *handler.ProjectHandler
	GalleryHandler      *handler.GalleryHandler
	AdminStudentHandler *handler.AdminStudentHandler
	AdminProjectHandler *handler.AdminProjectHandler
	AnalyticsHandler    *handler.AnalyticsHandler
	ActivityFeedHandler *handler.ActivityFeedHandler
	ActivityService     service.ActivityService
	JWTMiddleware       fiber.Handler
	Logger              zerolog.Logger
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	audit := middleware.Audit(deps.ActivityService, middleware.AuditConfig{
		SkipPaths: cfg.AuditSkipPaths,
	}, deps.Logger)

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	// Unauthenticated surface: signup, login and the public gallery.
	auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterPublic(auth)
	}

	public := api.Group("/public")
	if deps.GalleryHandler != nil {
		deps.GalleryHandler.Register(public)
	}

	// Authenticated surface: every request passes the audit interceptor
	// after JWT resolution so the actor id is already in locals.
	authed := api.Group("", jwtMiddleware, audit)
	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterProtected(authed.Group("/auth"))
	}

	student := authed.Group("/student", middleware.RequireRole(models.RoleStudent))
	if deps.ProfileHandler != nil {
		deps.ProfileHandler.Register(student)
	}
	if deps.ProjectHandler != nil {
		deps.ProjectHandler.Register(student)
	}

	admin := authed.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	if deps.AdminStudentHandler != nil {
		deps.AdminStudentHandler.Register(admin)
	}
	if deps.AdminProjectHandler != nil {
		deps.AdminProjectHandler.Register(admin)
	}
	if deps.AnalyticsHandler != nil {
		deps.AnalyticsHandler.Register(admin)
	}
	if deps.ActivityFeedHandler != nil {
		deps.ActivityFeedHandler.Register(admin)
	}
}

// AuditableRoutes lists the registered routes for startup validation of the
// audit classification rules.
func AuditableRoutes(app *fiber.App) []service.RouteRef {
	routes := app.GetRoutes(true)
	refs := make([]service.RouteRef, 0, len(routes))
	for _, route := range routes {
		refs = append(refs, service.RouteRef{Method: route.Method, Path: route.Path})
	}
	return refs
}
