package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/livetest-app/livetest/internal/analytics"
	"github.com/livetest-app/livetest/internal/dto"
	"github.com/livetest-app/livetest/internal/models"
)

const answerFetchWorkers = 8

// GraderResults is the slice of the grading client the analytics service needs.
type GraderResults interface {
	SubmissionsByTest(ctx context.Context, token, testID string) ([]models.Submission, error)
	SubmissionAnswers(ctx context.Context, token string, submissionID int) (models.AnswerSet, error)
}

// AnalyticsService builds the dashboard payload for a test: grade summary,
// distribution, and per-question miss rates.
type AnalyticsService interface {
	TestAnalytics(ctx context.Context, token, testID string) (dto.TestAnalyticsResponse, error)
}

type analyticsService struct {
	grader GraderResults
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewAnalyticsService constructs an analytics service instance.
func NewAnalyticsService(graderClient GraderResults, logger zerolog.Logger) AnalyticsService {
	return &analyticsService{
		grader: graderClient,
		logger: logger.With().Str("component", "analytics_service").Logger(),
		tracer: otel.Tracer("github.com/livetest-app/livetest/internal/service/analytics"),
	}
}

// TestAnalytics fetches the submissions for a test and fans out one answer
// fetch per submission. Individual answer fetches may fail independently;
// those submissions are left out of the miss rates and counted in
// AnswersFailed, but the dashboard still renders.
func (s *analyticsService) TestAnalytics(ctx context.Context, token, testID string) (dto.TestAnalyticsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.test")
	span.SetAttributes(attribute.String("analytics.test_id", testID))
	defer span.End()

	submissions, err := s.grader.SubmissionsByTest(ctx, token, testID)
	if err != nil {
		span.RecordError(err)
		return dto.TestAnalyticsResponse{}, err
	}

	grades := analytics.Grades(submissions)

	unlinked := 0
	for _, submission := range submissions {
		if !submission.Linked() {
			unlinked++
		}
	}

	response := dto.TestAnalyticsResponse{
		TestID:      testID,
		Histogram:   analytics.Histogram(grades),
		Submissions: submissions,
		Unlinked:    unlinked,
	}

	if summary, ok := analytics.Summarize(grades); ok {
		response.Summary = &summary
	}

	answers, failed := s.fetchAnswers(ctx, token, submissions)
	response.MissRates = analytics.MissRates(answers)
	response.AnswersFailed = failed

	span.SetAttributes(
		attribute.Int("analytics.submission_count", len(submissions)),
		attribute.Int("analytics.answers_failed", failed),
	)

	return response, nil
}

// fetchAnswers issues the per-submission answer requests concurrently with a
// bounded worker pool. Failures are tolerated per submission.
func (s *analyticsService) fetchAnswers(ctx context.Context, token string, submissions []models.Submission) ([]models.AnswerSet, int) {
	if len(submissions) == 0 {
		return nil, 0
	}

	jobs := make(chan int)
	var mu sync.Mutex
	var sets []models.AnswerSet
	failed := 0

	var wg sync.WaitGroup
	workers := answerFetchWorkers
	if len(submissions) < workers {
		workers = len(submissions)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				set, err := s.grader.SubmissionAnswers(ctx, token, id)
				mu.Lock()
				if err != nil {
					failed++
					s.logger.Warn().Int("submission_id", id).Err(err).Msg("answer fetch failed")
				} else {
					sets = append(sets, set)
				}
				mu.Unlock()
			}
		}()
	}

	for _, submission := range submissions {
		jobs <- submission.ID
	}
	close(jobs)
	wg.Wait()

	return sets, failed
}
