package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/livetest-app/livetest/internal/config"
	"github.com/livetest-app/livetest/internal/handler"
	"github.com/livetest-app/livetest/internal/middleware"
	"github.com/livetest-app/livetest/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	EnrollmentHandler *handler.EnrollmentHandler
	CourseHandler     *handler.CourseHandler
	TestHandler       *handler.TestHandler
	SubmissionHandler *handler.SubmissionHandler
	AnalyticsHandler  *handler.AnalyticsHandler
	LiveHandler       *handler.LiveHandler
	SessionMiddleware fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/capture/guide", handler.CaptureGuide())
	app.Get("/metrics", observability.MetricsHandler())

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("login", 10, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	session := deps.SessionMiddleware
	if session == nil {
		session = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.UserHandler != nil {
		deps.UserHandler.Register(api.Group("/users"), session)
	}
	if deps.EnrollmentHandler != nil {
		deps.EnrollmentHandler.Register(api.Group("/enrollment", session))
	}
	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(api.Group("/course", session))
	}
	if deps.TestHandler != nil {
		deps.TestHandler.Register(api.Group("/test", session))
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(api.Group("/submission", session))
	}
	if deps.AnalyticsHandler != nil {
		deps.AnalyticsHandler.Register(api.Group("/analytics", session))
	}
	if deps.LiveHandler != nil {
		deps.LiveHandler.Register(api.Group("/live", session))
	}
}
