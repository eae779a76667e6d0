package models

// Course groups tests and enrolled students under an owning teacher.
type Course struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Subject   string `json:"subject"`
	Section   int    `json:"course_number"`
	Semester  string `json:"semester"`
	Year      int    `json:"year"`
	TeacherID int    `json:"teacher_id"`
	Students  []int  `json:"student_ids"`
	Tests     []Test `json:"tests"`
}

// Student is a roster entry as returned by the grading API.
type Student struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// User identifies the authenticated account returned by the grader on login.
type User struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"type"`
}

// Roles recognised by the grading API. Exactly one applies per session.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)
