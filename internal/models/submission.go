package models

import "time"

// Answer records the choice a student bubbled in for one question and whether
// it matched the key.
type Answer struct {
	Choice  string `json:"choice"`
	Correct bool   `json:"correct"`
}

// AnswerSet maps question numbers (as emitted by the grader, string keys) to
// graded answers.
type AnswerSet map[string]Answer

// Submission is a graded answer sheet as reported by the grading API.
// Grades are percentages in [0,100]. StudentID is nil when a teacher graded
// a sheet without linking it to a student.
type Submission struct {
	ID             int       `json:"id"`
	TestID         string    `json:"test_id"`
	StudentID      *int      `json:"student_id"`
	Grade          float64   `json:"grade"`
	SubmissionTime time.Time `json:"submission_time"`
}

// Linked reports whether the submission is attached to a student.
func (s Submission) Linked() bool {
	return s.StudentID != nil
}
