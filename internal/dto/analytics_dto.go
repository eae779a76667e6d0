package dto

import (
	"github.com/livetest-app/livetest/internal/analytics"
	"github.com/livetest-app/livetest/internal/models"
)

// TestAnalyticsResponse is the dashboard payload for one test. Summary is
// nil when no submission carries a grade yet; the UI renders "N/A" instead
// of a fabricated zero.
type TestAnalyticsResponse struct {
	TestID        string               `json:"test_id"`
	Summary       *analytics.Summary   `json:"summary"`
	Histogram     []analytics.Bucket   `json:"histogram"`
	MissRates     []analytics.MissRate `json:"miss_rates"`
	Submissions   []models.Submission  `json:"submissions"`
	Unlinked      int                  `json:"unlinked"`
	AnswersFailed int                  `json:"answers_failed"`
}

// ResultEvent is pushed over the live results stream whenever a sheet
// finishes grading. Dashboards refetch analytics on receipt; the grading
// service does not echo the grade in its submit acknowledgement.
type ResultEvent struct {
	TestID       string `json:"test_id"`
	SubmissionID int    `json:"submission_id"`
	StudentID    *int   `json:"student_id,omitempty"`
}
