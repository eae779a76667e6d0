package dto

// SubmissionCreateRequest describes the multipart scantron upload. The test
// identifier is required before any network call; the student link is
// optional so a teacher can grade an unattributed sheet.
type SubmissionCreateRequest struct {
	TestID    string `form:"test_id" validate:"required,uuid4"`
	StudentID *int   `form:"student_id" validate:"omitempty,gt=0"`
}

// SubmissionCreateResponse acknowledges a graded sheet. GradedImageError is
// set when the follow-up fetch of the annotated image failed; the submission
// itself still stands.
type SubmissionCreateResponse struct {
	SubmissionID     int    `json:"submission_id"`
	GradedImageReady bool   `json:"graded_image_ready"`
	GradedImageError string `json:"graded_image_error,omitempty"`
}
