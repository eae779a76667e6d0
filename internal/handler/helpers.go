package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/livetest-app/livetest/internal/middleware"
	"github.com/livetest-app/livetest/internal/utils"
	"github.com/livetest-app/livetest/pkg/grader"
)

func parseIntParam(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Params(key))
	if value == "" {
		return 0, errors.New("missing " + key)
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return parsed, nil
}

func parseFormInt(c *fiber.Ctx, key string) (*int, error) {
	value := strings.TrimSpace(c.FormValue(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	return &parsed, nil
}

// sendGraderError maps a grading-service failure onto the gateway response.
// Upstream rejections keep their status and detail; an unreachable grading
// service reads as a bad gateway so clients can tell the difference between
// "your sheet was refused" and "nothing answered".
func sendGraderError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var apiErr *grader.APIError
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &apiErr):
		return utils.SendError(c, apiErr.StatusCode, apiErr.Detail)
	case errors.Is(err, grader.ErrUnreachable):
		logger.Warn().Err(err).Msg("grading service unreachable")
		return utils.SendError(c, fiber.StatusBadGateway, "grading service unreachable")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}
