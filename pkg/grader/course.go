package grader

import (
	"context"
	"fmt"
	"net/http"

	"github.com/livetest-app/livetest/internal/models"
)

// CourseCreate carries the fields required to create a course.
type CourseCreate struct {
	Name     string `json:"name"`
	Subject  string `json:"subject"`
	Section  int    `json:"course_number"`
	Semester string `json:"semester"`
	Year     int    `json:"year"`
}

// ListCourses fetches the courses visible to the authenticated account.
func (c *Client) ListCourses(ctx context.Context, token string) ([]models.Course, error) {
	var courses []models.Course
	if err := c.doJSON(ctx, http.MethodGet, "/course/", token, nil, &courses); err != nil {
		return nil, err
	}

	return courses, nil
}

// GetCourse fetches a single course with its tests.
func (c *Client) GetCourse(ctx context.Context, token string, id int) (models.Course, error) {
	var course models.Course
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/course/%d", id), token, nil, &course); err != nil {
		return models.Course{}, err
	}

	return course, nil
}

// CreateCourse creates a course owned by the authenticated teacher.
func (c *Client) CreateCourse(ctx context.Context, token string, req CourseCreate) (models.Course, error) {
	var course models.Course
	if err := c.doJSON(ctx, http.MethodPost, "/course/", token, req, &course); err != nil {
		return models.Course{}, err
	}

	return course, nil
}

// DeleteCourse removes a course and everything under it.
func (c *Client) DeleteCourse(ctx context.Context, token string, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/course/%d", id), token, nil, nil)
}
