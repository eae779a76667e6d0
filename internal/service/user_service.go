package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/livetest-app/livetest/internal/dto"
	"github.com/livetest-app/livetest/internal/models"
	"github.com/livetest-app/livetest/pkg/grader"
)

// GraderUsers is the slice of the grading client the user service needs.
type GraderUsers interface {
	RegisterTeacher(ctx context.Context, req grader.TeacherCreate) (models.User, error)
	RegisterStudent(ctx context.Context, req grader.StudentCreate) (models.User, error)
	ListStudents(ctx context.Context, token string) ([]models.Student, error)
	Enroll(ctx context.Context, token string, courseID, studentID int) error
	Unenroll(ctx context.Context, token string, courseID, studentID int) error
}

// UserService fronts account registration, the student roster, and course
// enrollment. Uniqueness of emails and M-numbers is enforced upstream; the
// grading service's conflict detail passes through unchanged.
type UserService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (models.User, error)
	Roster(ctx context.Context, token string) ([]models.Student, error)
	Enroll(ctx context.Context, token string, courseID, studentID int) error
	Unenroll(ctx context.Context, token string, courseID, studentID int) error
}

type userService struct {
	grader    GraderUsers
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewUserService constructs a user service instance.
func NewUserService(graderClient GraderUsers, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		grader:    graderClient,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Register(ctx context.Context, payload dto.RegisterRequest) (models.User, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.User{}, err
	}

	name := s.sanitizer.Sanitize(payload.Name)

	var (
		user models.User
		err  error
	)
	if payload.Role == models.RoleTeacher {
		user, err = s.grader.RegisterTeacher(ctx, grader.TeacherCreate{
			Name:     name,
			Email:    payload.Email,
			Password: payload.Password,
		})
	} else {
		user, err = s.grader.RegisterStudent(ctx, grader.StudentCreate{
			Name:     name,
			Email:    payload.Email,
			Password: payload.Password,
			MNumber:  payload.MNumber,
		})
	}
	if err != nil {
		return models.User{}, err
	}

	user.Role = payload.Role
	s.logger.Info().Int("user_id", user.ID).Str("role", payload.Role).Msg("account registered")

	return user, nil
}

func (s *userService) Roster(ctx context.Context, token string) ([]models.Student, error) {
	return s.grader.ListStudents(ctx, token)
}

func (s *userService) Enroll(ctx context.Context, token string, courseID, studentID int) error {
	if err := s.grader.Enroll(ctx, token, courseID, studentID); err != nil {
		return err
	}

	s.logger.Info().Int("course_id", courseID).Int("student_id", studentID).Msg("student enrolled")

	return nil
}

func (s *userService) Unenroll(ctx context.Context, token string, courseID, studentID int) error {
	return s.grader.Unenroll(ctx, token, courseID, studentID)
}
