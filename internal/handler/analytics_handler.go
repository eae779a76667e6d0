package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/livetest-app/livetest/internal/middleware"
	"github.com/livetest-app/livetest/internal/models"
	"github.com/livetest-app/livetest/internal/service"
	"github.com/livetest-app/livetest/internal/utils"
)

// AnalyticsHandler serves the per-test dashboard payload.
type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  zerolog.Logger
}

// NewAnalyticsHandler builds an analytics handler instance.
func NewAnalyticsHandler(service service.AnalyticsService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. Grade
// distributions expose every student's standing, so the dashboard is
// teacher-only.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("/test/:test_id", middleware.RequireRole(models.RoleTeacher), h.testAnalytics)
}

func (h *AnalyticsHandler) testAnalytics(c *fiber.Ctx) error {
	analytics, err := h.service.TestAnalytics(c.Context(), middleware.AccessToken(c), c.Params("test_id"))
	if err != nil {
		return sendGraderError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "analytics computed", analytics)
}
