package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/livetest-app/livetest/internal/dto"
	"github.com/livetest-app/livetest/internal/middleware"
	"github.com/livetest-app/livetest/internal/models"
	"github.com/livetest-app/livetest/internal/service"
	"github.com/livetest-app/livetest/internal/utils"
)

// CourseHandler manages course endpoints.
type CourseHandler struct {
	service service.CourseService
	logger  zerolog.Logger
}

// NewCourseHandler builds a course handler instance.
func NewCourseHandler(service service.CourseService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service: service,
		logger:  logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. Mutations are
// teacher-only; reads are open to any authenticated session.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/:id", h.get)
	router.Post("/", middleware.RequireRole(models.RoleTeacher), h.create)
	router.Delete("/:id", middleware.RequireRole(models.RoleTeacher), h.delete)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	courses, err := h.service.List(c.Context(), middleware.AccessToken(c))
	if err != nil {
		return sendGraderError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	id, err := parseIntParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	course, err := h.service.Get(c.Context(), middleware.AccessToken(c), id)
	if err != nil {
		return sendGraderError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.service.Create(c.Context(), middleware.AccessToken(c), payload)
	if err != nil {
		return sendGraderError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "course created", course)
}

func (h *CourseHandler) delete(c *fiber.Ctx) error {
	id, err := parseIntParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), middleware.AccessToken(c), id); err != nil {
		return sendGraderError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "course deleted", nil)
}
