package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/livetest-app/livetest/internal/dto"
	"github.com/livetest-app/livetest/internal/middleware"
	"github.com/livetest-app/livetest/internal/models"
	"github.com/livetest-app/livetest/internal/service"
	"github.com/livetest-app/livetest/internal/utils"
	"github.com/livetest-app/livetest/pkg/grader"
)

// GraderSubmissions is the slice of the grading client the handler needs for
// reads and deletes; uploads go through the coordinator.
type GraderSubmissions interface {
	SubmissionsByTest(ctx context.Context, token, testID string) ([]models.Submission, error)
	SubmissionAnswers(ctx context.Context, token string, submissionID int) (models.AnswerSet, error)
	GradedImage(ctx context.Context, token string, submissionID int) ([]byte, error)
	DeleteSubmission(ctx context.Context, token string, submissionID int) error
}

// SubmissionHandler manages the scantron upload and its follow-ups.
type SubmissionHandler struct {
	coordinator *service.Coordinator
	grader      GraderSubmissions
	maxUpload   int64
	logger      zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance. maxUploadMB
// bounds the accepted sheet image size.
func NewSubmissionHandler(coordinator *service.Coordinator, graderClient GraderSubmissions, maxUploadMB int, logger zerolog.Logger) *SubmissionHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}

	return &SubmissionHandler{
		coordinator: coordinator,
		grader:      graderClient,
		maxUpload:   int64(maxUploadMB) << 20,
		logger:      logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Post("/", h.create)
	router.Get("/test/:test_id", h.listByTest)
	router.Get("/:id/answers", h.answers)
	router.Get("/image/graded/:id", h.gradedImage)
	router.Delete("/:id", middleware.RequireRole(models.RoleTeacher), h.delete)
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	var payload dto.SubmissionCreateRequest
	payload.TestID = c.FormValue("test_id")

	studentID, err := parseFormInt(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	payload.StudentID = studentID

	file, err := c.FormFile("submission_image")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "submission_image is required")
	}
	if file.Size > h.maxUpload {
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("submission image exceeds %d MB", h.maxUpload>>20))
	}

	image, err := readUpload(file)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "submission image could not be read")
	}

	detected := mimetype.Detect(image)
	if !detected.Is("image/jpeg") && !detected.Is("image/png") {
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, "submission image must be JPEG or PNG")
	}

	outcome, err := h.coordinator.Submit(c.Context(), middleware.AccessToken(c), payload, image, file.Filename)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission graded", outcome.Response)
}

func (h *SubmissionHandler) listByTest(c *fiber.Ctx) error {
	submissions, err := h.grader.SubmissionsByTest(c.Context(), middleware.AccessToken(c), c.Params("test_id"))
	if err != nil {
		return sendGraderError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) answers(c *fiber.Ctx) error {
	id, err := parseIntParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	answers, err := h.grader.SubmissionAnswers(c.Context(), middleware.AccessToken(c), id)
	if err != nil {
		return sendGraderError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "answers retrieved", answers)
}

func (h *SubmissionHandler) gradedImage(c *fiber.Ctx) error {
	id, err := parseIntParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	image, err := h.grader.GradedImage(c.Context(), middleware.AccessToken(c), id)
	if err != nil {
		if errors.Is(err, grader.ErrImageDecode) {
			return utils.SendError(c, fiber.StatusBadGateway, "graded image could not be decoded")
		}
		return sendGraderError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendImage(c, "image/jpeg", image)
}

func (h *SubmissionHandler) delete(c *fiber.Ctx) error {
	id, err := parseIntParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.grader.DeleteSubmission(c.Context(), middleware.AccessToken(c), id); err != nil {
		return sendGraderError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "submission deleted", nil)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrCoordinatorClosed) {
		return utils.SendError(c, fiber.StatusServiceUnavailable, "submission pipeline is shutting down")
	}
	return sendGraderError(c, *requestLogger(h.logger, c), err)
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	opened, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer opened.Close()

	return io.ReadAll(opened)
}
