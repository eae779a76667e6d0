package grader

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/livetest-app/livetest/internal/models"
)

// Template image kinds served by the grading service.
const (
	TemplateBlank = "blank"
	TemplateKey   = "key"
)

// TestCreate carries the fields required to create a test, including the
// answer key the grader scores against.
type TestCreate struct {
	Name         string         `json:"name"`
	StartTime    time.Time      `json:"start_t"`
	EndTime      time.Time      `json:"end_t"`
	NumQuestions int            `json:"num_questions"`
	NumChoices   int            `json:"num_choices"`
	CourseID     int            `json:"course_id"`
	Answers      map[string]int `json:"answers"`
}

// TestUpdate carries the mutable test fields. Nil fields are left unchanged.
type TestUpdate struct {
	Name      *string    `json:"name,omitempty"`
	StartTime *time.Time `json:"start_t,omitempty"`
	EndTime   *time.Time `json:"end_t,omitempty"`
}

// CreateTest schedules a new test under a course.
func (c *Client) CreateTest(ctx context.Context, token string, req TestCreate) (models.Test, error) {
	var test models.Test
	if err := c.doJSON(ctx, http.MethodPost, "/test/", token, req, &test); err != nil {
		return models.Test{}, err
	}

	return test, nil
}

// GetTest fetches a single test by its UUID.
func (c *Client) GetTest(ctx context.Context, token, id string) (models.Test, error) {
	var test models.Test
	if err := c.doJSON(ctx, http.MethodGet, "/test/"+id, token, nil, &test); err != nil {
		return models.Test{}, err
	}

	return test, nil
}

// UpdateTest patches the test name and, while the test is not finalized, its
// scheduled window.
func (c *Client) UpdateTest(ctx context.Context, token, id string, req TestUpdate) (models.Test, error) {
	var test models.Test
	if err := c.doJSON(ctx, http.MethodPatch, "/test/"+id, token, req, &test); err != nil {
		return models.Test{}, err
	}

	return test, nil
}

// DeleteTest removes a test and its submissions.
func (c *Client) DeleteTest(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/test/"+id, token, nil, nil)
}

// TemplateImage downloads the blank answer sheet or the key sheet for a test.
// The service ships these zlib-compressed; the returned bytes are the
// inflated image, ready to render.
func (c *Client) TemplateImage(ctx context.Context, token, kind, testID string) ([]byte, error) {
	if kind != TemplateBlank && kind != TemplateKey {
		return nil, fmt.Errorf("unknown template kind %q", kind)
	}

	compressed, err := c.doBytes(ctx, fmt.Sprintf("/test/image/%s/%s/", kind, testID), token)
	if err != nil {
		return nil, err
	}

	return inflate(compressed)
}
