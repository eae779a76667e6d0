package dto

import "time"

// TestCreateRequest describes a new test and its answer key. Key completeness
// and the start/end ordering are checked in the service before any request
// reaches the grading service.
type TestCreateRequest struct {
	Name         string         `json:"name" validate:"required,min=1,max=255"`
	StartTime    time.Time      `json:"start_t" validate:"required"`
	EndTime      time.Time      `json:"end_t" validate:"required"`
	NumQuestions int            `json:"num_questions" validate:"required,gt=0,lte=200"`
	NumChoices   int            `json:"num_choices" validate:"required,gte=2,lte=7"`
	CourseID     int            `json:"course_id" validate:"required,gt=0"`
	Answers      map[string]int `json:"answers" validate:"required"`
}

// TestUpdateRequest carries the mutable test fields; nil means unchanged.
type TestUpdateRequest struct {
	Name      *string    `json:"name" validate:"omitempty,min=1,max=255"`
	StartTime *time.Time `json:"start_t"`
	EndTime   *time.Time `json:"end_t"`
}
