package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/livetest-app/livetest/internal/dto"
	"github.com/livetest-app/livetest/internal/service"
	"github.com/livetest-app/livetest/internal/utils"
)

// AuthHandler fronts the login passthrough.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler builds an auth handler instance.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/login", h.login)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	identity, err := h.service.Login(c.Context(), payload)
	if err != nil {
		if errors.Is(err, service.ErrLockedOut) {
			return utils.SendError(c, fiber.StatusTooManyRequests, "too many failed login attempts, try again later")
		}
		return sendGraderError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "login successful", identity)
}
