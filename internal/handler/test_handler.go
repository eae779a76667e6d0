package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/livetest-app/livetest/internal/dto"
	"github.com/livetest-app/livetest/internal/middleware"
	"github.com/livetest-app/livetest/internal/models"
	"github.com/livetest-app/livetest/internal/service"
	"github.com/livetest-app/livetest/internal/utils"
	"github.com/livetest-app/livetest/pkg/grader"
)

// TestHandler manages test endpoints, including the printable sheet images.
type TestHandler struct {
	service service.TestService
	logger  zerolog.Logger
}

// NewTestHandler builds a test handler instance.
func NewTestHandler(service service.TestService, logger zerolog.Logger) *TestHandler {
	return &TestHandler{
		service: service,
		logger:  logger.With().Str("component", "test_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. Everything but
// the plain read is teacher-only: the answer key and the printable key image
// never reach a student session.
func (h *TestHandler) Register(router fiber.Router) {
	router.Get("/:id", h.get)
	router.Post("/", middleware.RequireRole(models.RoleTeacher), h.create)
	router.Patch("/:id", middleware.RequireRole(models.RoleTeacher), h.update)
	router.Delete("/:id", middleware.RequireRole(models.RoleTeacher), h.delete)
	router.Get("/image/:kind/:id", middleware.RequireRole(models.RoleTeacher), h.templateImage)
}

func (h *TestHandler) get(c *fiber.Ctx) error {
	test, err := h.service.Get(c.Context(), middleware.AccessToken(c), c.Params("id"))
	if err != nil {
		return sendGraderError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "test retrieved", test)
}

func (h *TestHandler) create(c *fiber.Ctx) error {
	var payload dto.TestCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	test, err := h.service.Create(c.Context(), middleware.AccessToken(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "test created", test)
}

func (h *TestHandler) update(c *fiber.Ctx) error {
	var payload dto.TestUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	test, err := h.service.Update(c.Context(), middleware.AccessToken(c), c.Params("id"), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "test updated", test)
}

func (h *TestHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), middleware.AccessToken(c), c.Params("id")); err != nil {
		return sendGraderError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "test deleted", nil)
}

func (h *TestHandler) templateImage(c *fiber.Ctx) error {
	kind := strings.ToLower(c.Params("kind"))
	if kind != grader.TemplateBlank && kind != grader.TemplateKey {
		return utils.SendError(c, fiber.StatusBadRequest, "unknown template kind")
	}

	image, err := h.service.TemplateImage(c.Context(), middleware.AccessToken(c), kind, c.Params("id"))
	if err != nil {
		if errors.Is(err, grader.ErrImageDecode) {
			return utils.SendError(c, fiber.StatusBadGateway, "template image could not be decoded")
		}
		return sendGraderError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendImage(c, "image/png", image)
}

func (h *TestHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrScheduleInvalid),
		errors.Is(err, service.ErrAnswerKeyIncomplete),
		errors.Is(err, service.ErrAnswerKeyOutOfRange):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return sendGraderError(c, *requestLogger(h.logger, c), err)
	}
}
