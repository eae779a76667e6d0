package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/livetest-app/livetest/internal/config"
	"github.com/livetest-app/livetest/internal/handler"
	"github.com/livetest-app/livetest/internal/middleware"
	"github.com/livetest-app/livetest/internal/router"
	"github.com/livetest-app/livetest/internal/service"
	"github.com/livetest-app/livetest/pkg/grader"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	graderClient, err := grader.New(grader.Config{
		BaseURL: cfg.GraderBaseURL,
		Timeout: cfg.GraderTimeout,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create grading client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	hub := service.NewResultHub()
	coordinator := service.NewCoordinator(graderClient, validate, hub, cfg.AutoResetDelay, logger)
	defer coordinator.Close()

	authService := service.NewAuthService(graderClient, validate, cfg.LoginMaxFails, cfg.LoginLockout, logger)
	userService := service.NewUserService(graderClient, validate, logger)
	courseService := service.NewCourseService(graderClient, validate, logger)
	testService := service.NewTestService(graderClient, validate, logger)
	analyticsService := service.NewAnalyticsService(graderClient, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.MaxUploadMB + 1) << 20,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		UserHandler:       handler.NewUserHandler(userService, logger),
		EnrollmentHandler: handler.NewEnrollmentHandler(userService, logger),
		CourseHandler:     handler.NewCourseHandler(courseService, logger),
		TestHandler:       handler.NewTestHandler(testService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(coordinator, graderClient, cfg.MaxUploadMB, logger),
		AnalyticsHandler:  handler.NewAnalyticsHandler(analyticsService, logger),
		LiveHandler:       handler.NewLiveHandler(hub, logger),
		SessionMiddleware: middleware.SessionFromToken(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
