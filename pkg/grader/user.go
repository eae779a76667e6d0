package grader

import (
	"context"
	"fmt"
	"net/http"

	"github.com/livetest-app/livetest/internal/models"
)

// TeacherCreate carries the fields required to register a teacher account.
type TeacherCreate struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StudentCreate carries the fields required to register a student account.
// MNumber is the institutional student number and must be unique upstream.
type StudentCreate struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	MNumber  string `json:"M_number"`
}

// RegisterTeacher creates a teacher account. Registration is unauthenticated;
// duplicate emails come back as an *APIError with the upstream detail.
func (c *Client) RegisterTeacher(ctx context.Context, req TeacherCreate) (models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, http.MethodPost, "/users/teachers/", "", req, &user); err != nil {
		return models.User{}, err
	}

	return user, nil
}

// RegisterStudent creates a student account. Duplicate emails and duplicate
// M-numbers both surface as an *APIError with the upstream detail.
func (c *Client) RegisterStudent(ctx context.Context, req StudentCreate) (models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, http.MethodPost, "/users/students/", "", req, &user); err != nil {
		return models.User{}, err
	}

	return user, nil
}

// ListStudents fetches the full student roster.
func (c *Client) ListStudents(ctx context.Context, token string) ([]models.Student, error) {
	var students []models.Student
	if err := c.doJSON(ctx, http.MethodGet, "/users/students/", token, nil, &students); err != nil {
		return nil, err
	}

	return students, nil
}

// Enroll adds a student to a course.
func (c *Client) Enroll(ctx context.Context, token string, courseID, studentID int) error {
	path := fmt.Sprintf("/enrollment/%d/student/%d", courseID, studentID)
	return c.doJSON(ctx, http.MethodPost, path, token, nil, nil)
}

// Unenroll removes a student from a course.
func (c *Client) Unenroll(ctx context.Context, token string, courseID, studentID int) error {
	path := fmt.Sprintf("/enrollment/%d/student/%d", courseID, studentID)
	return c.doJSON(ctx, http.MethodDelete, path, token, nil, nil)
}
