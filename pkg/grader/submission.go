package grader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/livetest-app/livetest/internal/models"
)

// ErrTestIDRequired rejects a submission before any request leaves the
// process. Every submit call must name the test it belongs to.
var ErrTestIDRequired = errors.New("test id is required")

// SubmitRequest carries a captured answer-sheet image and its metadata.
// StudentID is optional: a teacher may grade a sheet without linking it.
type SubmitRequest struct {
	Image     []byte
	Filename  string
	TestID    string
	StudentID *int
}

// SubmitResult is the grading service acknowledgement of a new submission.
type SubmitResult struct {
	Success      bool `json:"success"`
	SubmissionID int  `json:"submission_id"`
}

// Submit uploads a sheet image as multipart form data and returns the new
// submission identifier. Resubmitting the same image is not deduplicated
// here; every call creates a new submission from this client's perspective.
func (c *Client) Submit(ctx context.Context, token string, req SubmitRequest) (SubmitResult, error) {
	if strings.TrimSpace(req.TestID) == "" {
		return SubmitResult{}, ErrTestIDRequired
	}
	if len(req.Image) == 0 {
		return SubmitResult{}, fmt.Errorf("submission image is empty")
	}

	filename := req.Filename
	if filename == "" {
		filename = "sheet.jpg"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="submission_image"; filename=%q`, filename))
	header.Set("Content-Type", mimetype.Detect(req.Image).String())
	part, err := writer.CreatePart(header)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("build multipart payload: %w", err)
	}
	if _, err := part.Write(req.Image); err != nil {
		return SubmitResult{}, fmt.Errorf("build multipart payload: %w", err)
	}

	if req.StudentID != nil {
		if err := writer.WriteField("student_id", strconv.Itoa(*req.StudentID)); err != nil {
			return SubmitResult{}, fmt.Errorf("build multipart payload: %w", err)
		}
	}
	if err := writer.WriteField("test_id", req.TestID); err != nil {
		return SubmitResult{}, fmt.Errorf("build multipart payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return SubmitResult{}, fmt.Errorf("build multipart payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/submission/"), &body)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	setAuth(httpReq, token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return SubmitResult{}, decodeAPIError(resp)
	}

	var result SubmitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return SubmitResult{}, fmt.Errorf("decode response: %w", err)
	}

	c.logger.Info().Int("submission_id", result.SubmissionID).Str("test_id", req.TestID).Msg("sheet submitted")

	return result, nil
}

// SubmissionsByTest lists the graded submissions recorded for a test.
func (c *Client) SubmissionsByTest(ctx context.Context, token, testID string) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := c.doJSON(ctx, http.MethodGet, "/submission/test/"+testID, token, nil, &submissions); err != nil {
		return nil, err
	}

	return submissions, nil
}

// SubmissionAnswers fetches the per-question answer record for a submission.
func (c *Client) SubmissionAnswers(ctx context.Context, token string, submissionID int) (models.AnswerSet, error) {
	var payload struct {
		Answers models.AnswerSet `json:"answers"`
	}
	path := fmt.Sprintf("/submission/etc/answers/%d", submissionID)
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &payload); err != nil {
		return nil, err
	}

	return payload.Answers, nil
}

// GradedImage downloads the annotated sheet for a submission and inflates it.
func (c *Client) GradedImage(ctx context.Context, token string, submissionID int) ([]byte, error) {
	compressed, err := c.doBytes(ctx, fmt.Sprintf("/submission/image/graded/%d", submissionID), token)
	if err != nil {
		return nil, err
	}

	return inflate(compressed)
}

// DeleteSubmission removes a recorded submission.
func (c *Client) DeleteSubmission(ctx context.Context, token string, submissionID int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/submission/%d", submissionID), token, nil, nil)
}
