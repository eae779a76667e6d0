package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/livetest-app/livetest/internal/dto"
	"github.com/livetest-app/livetest/internal/models"
	"github.com/livetest-app/livetest/pkg/grader"
)

// GraderCourses is the slice of the grading client the course service needs.
type GraderCourses interface {
	ListCourses(ctx context.Context, token string) ([]models.Course, error)
	GetCourse(ctx context.Context, token string, id int) (models.Course, error)
	CreateCourse(ctx context.Context, token string, req grader.CourseCreate) (models.Course, error)
	DeleteCourse(ctx context.Context, token string, id int) error
}

// CourseService fronts course reads and teacher-side mutations. Every read
// is a fresh fetch; the gateway keeps no copy beyond the response in flight.
type CourseService interface {
	List(ctx context.Context, token string) ([]models.Course, error)
	Get(ctx context.Context, token string, id int) (models.Course, error)
	Create(ctx context.Context, token string, payload dto.CourseCreateRequest) (models.Course, error)
	Delete(ctx context.Context, token string, id int) error
}

type courseService struct {
	grader    GraderCourses
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCourseService constructs a course service instance.
func NewCourseService(graderClient GraderCourses, validate *validator.Validate, logger zerolog.Logger) CourseService {
	return &courseService{
		grader:    graderClient,
		validator: validate,
		logger:    logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) List(ctx context.Context, token string) ([]models.Course, error) {
	return s.grader.ListCourses(ctx, token)
}

func (s *courseService) Get(ctx context.Context, token string, id int) (models.Course, error) {
	return s.grader.GetCourse(ctx, token, id)
}

func (s *courseService) Create(ctx context.Context, token string, payload dto.CourseCreateRequest) (models.Course, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Course{}, err
	}

	course, err := s.grader.CreateCourse(ctx, token, grader.CourseCreate{
		Name:     payload.Name,
		Subject:  payload.Subject,
		Section:  payload.Section,
		Semester: payload.Semester,
		Year:     payload.Year,
	})
	if err != nil {
		return models.Course{}, err
	}

	s.logger.Info().Int("course_id", course.ID).Msg("course created")

	return course, nil
}

func (s *courseService) Delete(ctx context.Context, token string, id int) error {
	return s.grader.DeleteCourse(ctx, token, id)
}
