package dto

// CourseCreateRequest describes a new course owned by the calling teacher.
type CourseCreateRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Subject  string `json:"subject" validate:"required,min=1,max=64"`
	Section  int    `json:"course_number" validate:"gte=0"`
	Semester string `json:"semester" validate:"required,oneof=fall spring summer winter"`
	Year     int    `json:"year" validate:"gte=2000,lte=2100"`
}
