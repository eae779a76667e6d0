package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/livetest-app/livetest/internal/dto"
	"github.com/livetest-app/livetest/internal/observability"
	"github.com/livetest-app/livetest/pkg/grader"
)

// Coordinator states. A successful grade holds the graded state for the
// auto-reset delay, then returns to ready so the next sheet in the stack can
// be captured without any page reload or re-navigation.
const (
	StateReady      = "ready"
	StateSubmitting = "submitting"
	StateGraded     = "graded"
	StateFailed     = "failed"
)

// ErrCoordinatorClosed rejects submissions after teardown.
var ErrCoordinatorClosed = errors.New("submission coordinator closed")

// GraderSubmitter is the slice of the grading client the coordinator needs.
type GraderSubmitter interface {
	Submit(ctx context.Context, token string, req grader.SubmitRequest) (grader.SubmitResult, error)
	GradedImage(ctx context.Context, token string, submissionID int) ([]byte, error)
}

// SubmitOutcome is what the coordinator hands back for one sheet: the
// acknowledgement plus the annotated image when its fetch succeeded.
type SubmitOutcome struct {
	Response    dto.SubmissionCreateResponse
	GradedImage []byte
}

// Coordinator drives the capture-submit-grade loop for a scanning station.
// Resubmitting the same sheet is not deduplicated here; every Submit creates
// a new submission upstream.
type Coordinator struct {
	grader     GraderSubmitter
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	hub        *ResultHub
	logger     zerolog.Logger
	tracer     trace.Tracer
	resetDelay time.Duration

	mu     sync.Mutex
	state  string
	timer  *time.Timer
	closed bool
}

// NewCoordinator constructs a coordinator that auto-resets to ready
// resetDelay after a grade lands.
func NewCoordinator(graderClient GraderSubmitter, validate *validator.Validate, hub *ResultHub, resetDelay time.Duration, logger zerolog.Logger) *Coordinator {
	if resetDelay <= 0 {
		resetDelay = 3 * time.Second
	}

	return &Coordinator{
		grader:     graderClient,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		hub:        hub,
		logger:     logger.With().Str("component", "submission_coordinator").Logger(),
		tracer:     otel.Tracer("github.com/livetest-app/livetest/internal/service/coordinator"),
		resetDelay: resetDelay,
		state:      StateReady,
	}
}

// State reports the current workflow state.
func (co *Coordinator) State() string {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.state
}

// Submit uploads a captured sheet. The test identifier is validated before
// any request leaves the process: a missing or malformed test_id never
// reaches the network. A failed graded-image fetch degrades the outcome but
// never rolls back the submission itself.
func (co *Coordinator) Submit(ctx context.Context, token string, payload dto.SubmissionCreateRequest, image []byte, filename string) (SubmitOutcome, error) {
	ctx, span := co.tracer.Start(ctx, "submission.submit")
	span.SetAttributes(attribute.String("submission.test_id", payload.TestID))
	defer span.End()

	if err := co.validator.Struct(payload); err != nil {
		return SubmitOutcome{}, err
	}

	if err := co.transition(StateSubmitting); err != nil {
		return SubmitOutcome{}, err
	}

	start := time.Now()
	result, err := co.grader.Submit(ctx, token, grader.SubmitRequest{
		Image:     image,
		Filename:  filename,
		TestID:    payload.TestID,
		StudentID: payload.StudentID,
	})
	if err != nil {
		span.RecordError(err)
		co.fail(err)
		return SubmitOutcome{}, co.sanitized(err)
	}

	observability.GradingLatency().Observe(time.Since(start).Seconds())

	outcome := SubmitOutcome{
		Response: dto.SubmissionCreateResponse{
			SubmissionID:     result.SubmissionID,
			GradedImageReady: true,
		},
	}

	gradedImage, err := co.grader.GradedImage(ctx, token, result.SubmissionID)
	if err != nil {
		// The submission is recorded upstream; only the rendering degrades.
		span.RecordError(err)
		observability.Submissions().WithLabelValues(observability.OutcomeImageDegraded).Inc()
		co.logger.Warn().Int("submission_id", result.SubmissionID).Err(err).Msg("graded image fetch failed")
		outcome.Response.GradedImageReady = false
		outcome.Response.GradedImageError = co.describe(err)
	} else {
		outcome.GradedImage = gradedImage
		observability.Submissions().WithLabelValues(observability.OutcomeGraded).Inc()
	}

	co.graded()

	if co.hub != nil {
		co.hub.Publish(dto.ResultEvent{
			TestID:       payload.TestID,
			SubmissionID: result.SubmissionID,
			StudentID:    payload.StudentID,
		})
	}

	return outcome, nil
}

// Close tears the coordinator down and cancels any pending auto-reset so no
// timer fires against a dead station.
func (co *Coordinator) Close() {
	co.mu.Lock()
	defer co.mu.Unlock()

	co.closed = true
	if co.timer != nil {
		co.timer.Stop()
		co.timer = nil
	}
}

func (co *Coordinator) transition(state string) error {
	co.mu.Lock()
	defer co.mu.Unlock()

	if co.closed {
		return ErrCoordinatorClosed
	}
	co.state = state
	return nil
}

func (co *Coordinator) fail(err error) {
	var apiErr *grader.APIError
	switch {
	case errors.As(err, &apiErr):
		observability.Submissions().WithLabelValues(observability.OutcomeRejected).Inc()
	case errors.Is(err, grader.ErrUnreachable):
		observability.Submissions().WithLabelValues(observability.OutcomeNetworkError).Inc()
	}

	co.setStateAndScheduleReset(StateFailed)
}

func (co *Coordinator) graded() {
	co.setStateAndScheduleReset(StateGraded)
}

// setStateAndScheduleReset records the terminal state of one sheet and arms
// the auto-reset back to ready. An earlier pending reset is replaced.
func (co *Coordinator) setStateAndScheduleReset(state string) {
	co.mu.Lock()
	defer co.mu.Unlock()

	if co.closed {
		return
	}
	co.state = state

	if co.timer != nil {
		co.timer.Stop()
	}
	co.timer = time.AfterFunc(co.resetDelay, func() {
		co.mu.Lock()
		defer co.mu.Unlock()
		if co.closed {
			return
		}
		co.state = StateReady
		co.timer = nil
	})
}

// sanitized strips any markup from grading-service detail text before it is
// surfaced verbatim to users.
func (co *Coordinator) sanitized(err error) error {
	var apiErr *grader.APIError
	if errors.As(err, &apiErr) {
		apiErr.Detail = co.sanitizer.Sanitize(apiErr.Detail)
	}
	return err
}

func (co *Coordinator) describe(err error) string {
	var apiErr *grader.APIError
	if errors.As(err, &apiErr) {
		return co.sanitizer.Sanitize(apiErr.Detail)
	}
	return "graded image unavailable"
}
