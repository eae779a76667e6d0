package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/livetest-app/livetest/internal/dto"
	"github.com/livetest-app/livetest/internal/models"
	"github.com/livetest-app/livetest/pkg/grader"
)

var (
	// ErrScheduleInvalid indicates the test window ends before it starts.
	ErrScheduleInvalid = errors.New("test end time must be after start time")
	// ErrAnswerKeyIncomplete indicates the key does not cover every question.
	ErrAnswerKeyIncomplete = errors.New("answer key must cover every question")
	// ErrAnswerKeyOutOfRange indicates a key entry names a nonexistent choice.
	ErrAnswerKeyOutOfRange = errors.New("answer key entry outside choice range")
)

// GraderTests is the slice of the grading client the test service needs.
type GraderTests interface {
	CreateTest(ctx context.Context, token string, req grader.TestCreate) (models.Test, error)
	GetTest(ctx context.Context, token, id string) (models.Test, error)
	UpdateTest(ctx context.Context, token, id string, req grader.TestUpdate) (models.Test, error)
	DeleteTest(ctx context.Context, token, id string) error
	TemplateImage(ctx context.Context, token, kind, testID string) ([]byte, error)
}

// TestService validates test mutations before forwarding them to the grading
// service. Malformed input (end before start, holes in the answer key) is a
// local rejection: no request is issued for it.
type TestService interface {
	Create(ctx context.Context, token string, payload dto.TestCreateRequest) (models.Test, error)
	Get(ctx context.Context, token, id string) (models.Test, error)
	Update(ctx context.Context, token, id string, payload dto.TestUpdateRequest) (models.Test, error)
	Delete(ctx context.Context, token, id string) error
	TemplateImage(ctx context.Context, token, kind, id string) ([]byte, error)
}

type testService struct {
	grader    GraderTests
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewTestService constructs a test service instance.
func NewTestService(graderClient GraderTests, validate *validator.Validate, logger zerolog.Logger) TestService {
	return &testService{
		grader:    graderClient,
		validator: validate,
		logger:    logger.With().Str("component", "test_service").Logger(),
	}
}

func (s *testService) Create(ctx context.Context, token string, payload dto.TestCreateRequest) (models.Test, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Test{}, err
	}
	if !payload.EndTime.After(payload.StartTime) {
		return models.Test{}, ErrScheduleInvalid
	}
	if err := validateAnswerKey(payload.Answers, payload.NumQuestions, payload.NumChoices); err != nil {
		return models.Test{}, err
	}

	test, err := s.grader.CreateTest(ctx, token, grader.TestCreate{
		Name:         payload.Name,
		StartTime:    payload.StartTime,
		EndTime:      payload.EndTime,
		NumQuestions: payload.NumQuestions,
		NumChoices:   payload.NumChoices,
		CourseID:     payload.CourseID,
		Answers:      payload.Answers,
	})
	if err != nil {
		return models.Test{}, err
	}

	s.logger.Info().Str("test_id", test.ID).Int("course_id", test.CourseID).Msg("test created")

	return test, nil
}

func (s *testService) Get(ctx context.Context, token, id string) (models.Test, error) {
	return s.grader.GetTest(ctx, token, id)
}

func (s *testService) Update(ctx context.Context, token, id string, payload dto.TestUpdateRequest) (models.Test, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Test{}, err
	}
	if payload.StartTime != nil && payload.EndTime != nil && !payload.EndTime.After(*payload.StartTime) {
		return models.Test{}, ErrScheduleInvalid
	}

	return s.grader.UpdateTest(ctx, token, id, grader.TestUpdate{
		Name:      payload.Name,
		StartTime: payload.StartTime,
		EndTime:   payload.EndTime,
	})
}

func (s *testService) Delete(ctx context.Context, token, id string) error {
	return s.grader.DeleteTest(ctx, token, id)
}

func (s *testService) TemplateImage(ctx context.Context, token, kind, id string) ([]byte, error) {
	return s.grader.TemplateImage(ctx, token, kind, id)
}

// validateAnswerKey requires one entry per question, numbered 1..n, with each
// selected choice inside the test's choice count (zero-based upstream).
func validateAnswerKey(answers map[string]int, numQuestions, numChoices int) error {
	if len(answers) != numQuestions {
		return fmt.Errorf("%w: %d entries for %d questions", ErrAnswerKeyIncomplete, len(answers), numQuestions)
	}

	for question := 1; question <= numQuestions; question++ {
		choice, ok := answers[strconv.Itoa(question)]
		if !ok {
			return fmt.Errorf("%w: missing question %d", ErrAnswerKeyIncomplete, question)
		}
		if choice < 0 || choice >= numChoices {
			return fmt.Errorf("%w: question %d choice %d", ErrAnswerKeyOutOfRange, question, choice)
		}
	}

	return nil
}
