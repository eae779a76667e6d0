package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/livetest-app/livetest/internal/middleware"
	"github.com/livetest-app/livetest/internal/models"
	"github.com/livetest-app/livetest/internal/service"
	"github.com/livetest-app/livetest/internal/utils"
)

// EnrollmentHandler manages course membership endpoints.
type EnrollmentHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewEnrollmentHandler builds an enrollment handler instance.
func NewEnrollmentHandler(service service.UserService, logger zerolog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		service: service,
		logger:  logger.With().Str("component", "enrollment_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. Both mutations
// are teacher-only.
func (h *EnrollmentHandler) Register(router fiber.Router) {
	router.Post("/:course_id/student/:student_id", middleware.RequireRole(models.RoleTeacher), h.enroll)
	router.Delete("/:course_id/student/:student_id", middleware.RequireRole(models.RoleTeacher), h.unenroll)
}

func (h *EnrollmentHandler) enroll(c *fiber.Ctx) error {
	courseID, studentID, err := enrollmentParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Enroll(c.Context(), middleware.AccessToken(c), courseID, studentID); err != nil {
		return sendGraderError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "student enrolled", nil)
}

func (h *EnrollmentHandler) unenroll(c *fiber.Ctx) error {
	courseID, studentID, err := enrollmentParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Unenroll(c.Context(), middleware.AccessToken(c), courseID, studentID); err != nil {
		return sendGraderError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "student removed", nil)
}

func enrollmentParams(c *fiber.Ctx) (int, int, error) {
	courseID, err := parseIntParam(c, "course_id")
	if err != nil {
		return 0, 0, err
	}
	studentID, err := parseIntParam(c, "student_id")
	if err != nil {
		return 0, 0, err
	}
	return courseID, studentID, nil
}
