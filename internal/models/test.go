package models

import "time"

// Test represents a scheduled exam as returned by the grading API. The
// gateway keeps no copy of record: every instance is a transient snapshot of
// the last fetch.
type Test struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	StartTime    time.Time `json:"start_t"`
	EndTime      time.Time `json:"end_t"`
	NumQuestions int       `json:"num_questions"`
	NumChoices   int       `json:"num_choices"`
	CourseID     int       `json:"course_id"`
}

// Test lifecycle states derived from the scheduled window.
const (
	TestStateLive      = "LIVE"
	TestStateWaiting   = "IN WAIT"
	TestStateFinalized = "FINALIZED"
)

// State reports where the test sits relative to its start/end window.
func (t Test) State(now time.Time) string {
	switch {
	case now.Before(t.StartTime):
		return TestStateWaiting
	case now.After(t.EndTime):
		return TestStateFinalized
	default:
		return TestStateLive
	}
}

// AcceptsSubmissions reports whether a sheet may be submitted right now.
func (t Test) AcceptsSubmissions(now time.Time) bool {
	return t.State(now) == TestStateLive
}
