package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/livetest-app/livetest/internal/dto"
	"github.com/livetest-app/livetest/internal/middleware"
	"github.com/livetest-app/livetest/internal/models"
	"github.com/livetest-app/livetest/internal/service"
	"github.com/livetest-app/livetest/internal/utils"
)

// UserHandler manages account registration and the student roster.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler builds a user handler instance.
func NewUserHandler(service service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. Registration is
// unauthenticated but rate-limited; the roster is teacher-only, so the
// session middleware is applied per-route rather than on the group.
func (h *UserHandler) Register(router fiber.Router, session fiber.Handler) {
	router.Post("/register", middleware.RateLimit("register", 10, time.Minute), h.register)
	router.Get("/students", session, middleware.RequireRole(models.RoleTeacher), h.roster)
}

func (h *UserHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.service.Register(c.Context(), payload)
	if err != nil {
		return sendGraderError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "account registered", user)
}

func (h *UserHandler) roster(c *fiber.Ctx) error {
	students, err := h.service.Roster(c.Context(), middleware.AccessToken(c))
	if err != nil {
		return sendGraderError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "students retrieved", students)
}
