package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	gorillaws "github.com/gorilla/websocket"
	"github.com/klauspost/compress/zlib"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/livetest-app/livetest/internal/config"
	"github.com/livetest-app/livetest/internal/dto"
	"github.com/livetest-app/livetest/internal/handler"
	"github.com/livetest-app/livetest/internal/middleware"
	"github.com/livetest-app/livetest/internal/router"
	"github.com/livetest-app/livetest/internal/service"
	"github.com/livetest-app/livetest/pkg/grader"
)

const (
	jwtSecret = "integration-secret"
	batchTest = "1b73cfc1-b88a-4d98-bbcf-e1cbfb6afc9b"
)

func signToken(t *testing.T, userID int, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   userID,
		"type": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return signed
}

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// fakeGradingService imitates the upstream grading API: compressed image
// bodies, {"detail"} error envelopes, direct JSON everywhere else.
func fakeGradingService(t *testing.T, teacherToken string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "rightpassword" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"detail": "invalid credentials"}`)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": teacherToken,
			"type":         "teacher",
			"id":           3,
			"email":        creds.Email,
			"name":         "Pat Teacher",
		})
	})

	mux.HandleFunc("POST /course/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": 7, "name": "Physics 101", "subject": "PHYS", "course_number": 101,
			"semester": "fall", "year": 2026, "teacher_id": 3,
		})
	})

	mux.HandleFunc("POST /test/", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		payload["id"] = batchTest
		json.NewEncoder(w).Encode(payload)
	})

	nextSubmission := 100
	mux.HandleFunc("POST /submission/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(16<<20))
		require.Equal(t, batchTest, r.FormValue("test_id"))
		file, _, err := r.FormFile("submission_image")
		require.NoError(t, err)
		defer file.Close()
		sheet, err := io.ReadAll(file)
		require.NoError(t, err)
		require.NotEmpty(t, sheet)

		nextSubmission++
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":       true,
			"submission_id": nextSubmission,
		})
	})

	mux.HandleFunc("GET /submission/image/graded/", func(w http.ResponseWriter, r *http.Request) {
		w.Write(deflate(t, []byte("annotated-jpeg-bytes")))
	})

	mux.HandleFunc("GET /submission/test/", func(w http.ResponseWriter, r *http.Request) {
		grades := []float64{84, 81, 75, 92, 67}
		submissions := make([]map[string]interface{}, 0, len(grades))
		for i, grade := range grades {
			submissions = append(submissions, map[string]interface{}{
				"id": i + 1, "test_id": batchTest, "grade": grade,
			})
		}
		json.NewEncoder(w).Encode(submissions)
	})

	mux.HandleFunc("GET /submission/etc/answers/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"answers": map[string]interface{}{
				"1": map[string]interface{}{"choice": "A", "correct": true},
				"2": map[string]interface{}{"choice": "C", "correct": false},
			},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func setupGateway(t *testing.T, upstream string) *fiber.App {
	t.Helper()

	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())

	graderClient, err := grader.New(grader.Config{BaseURL: upstream, Timeout: 5 * time.Second}, logger)
	require.NoError(t, err)

	hub := service.NewResultHub()
	coordinator := service.NewCoordinator(graderClient, validate, hub, 10*time.Millisecond, logger)
	t.Cleanup(coordinator.Close)

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, config.Config{AppName: "livetest-test", JWTSecret: jwtSecret}, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(service.NewAuthService(graderClient, validate, 5, 30*time.Second, logger), logger),
		CourseHandler:     handler.NewCourseHandler(service.NewCourseService(graderClient, validate, logger), logger),
		TestHandler:       handler.NewTestHandler(service.NewTestService(graderClient, validate, logger), logger),
		SubmissionHandler: handler.NewSubmissionHandler(coordinator, graderClient, 10, logger),
		AnalyticsHandler:  handler.NewAnalyticsHandler(service.NewAnalyticsService(graderClient, logger), logger),
		LiveHandler:       handler.NewLiveHandler(hub, logger),
		SessionMiddleware: middleware.SessionFromToken(jwtSecret),
	})
	return app
}

func authedRequest(method, target, token string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestGatewayEndToEndFlow(t *testing.T) {
	teacherToken := signToken(t, 3, "teacher")
	upstream := fakeGradingService(t, teacherToken)
	app := setupGateway(t, upstream.URL)

	// Step 1: login through the gateway.
	creds, err := json.Marshal(dto.LoginRequest{Email: "teacher@example.edu", Password: "rightpassword"})
	require.NoError(t, err)
	loginReq := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(creds))
	loginReq.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(loginReq, 5000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var login struct {
		Data dto.LoginResponse `json:"data"`
	}
	decode(t, resp, &login)
	require.Equal(t, teacherToken, login.Data.AccessToken)
	token := login.Data.AccessToken

	// Step 2: create a course and a test.
	courseBody, err := json.Marshal(dto.CourseCreateRequest{
		Name: "Physics 101", Subject: "PHYS", Section: 101, Semester: "fall", Year: 2026,
	})
	require.NoError(t, err)
	courseReq := authedRequest(http.MethodPost, "/api/v1/course/", token, bytes.NewReader(courseBody))
	courseReq.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(courseReq, 5000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	start := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	testBody, err := json.Marshal(dto.TestCreateRequest{
		Name: "Midterm 1", StartTime: start, EndTime: start.Add(time.Hour),
		NumQuestions: 2, NumChoices: 4, CourseID: 7,
		Answers: map[string]int{"1": 0, "2": 2},
	})
	require.NoError(t, err)
	testReq := authedRequest(http.MethodPost, "/api/v1/test/", token, bytes.NewReader(testBody))
	testReq.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(testReq, 5000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Step 3: submit a captured sheet.
	var sheet bytes.Buffer
	require.NoError(t, jpeg.Encode(&sheet, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil))

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	require.NoError(t, writer.WriteField("test_id", batchTest))
	part, err := writer.CreateFormFile("submission_image", "sheet.jpg")
	require.NoError(t, err)
	_, err = part.Write(sheet.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	submitReq := authedRequest(http.MethodPost, "/api/v1/submission/", token, &form)
	submitReq.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err = app.Test(submitReq, 5000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var submitted struct {
		Data dto.SubmissionCreateResponse `json:"data"`
	}
	decode(t, resp, &submitted)
	require.True(t, submitted.Data.GradedImageReady)
	require.Positive(t, submitted.Data.SubmissionID)

	// Step 4: the graded image arrives inflated, not as the raw zlib body.
	imageReq := authedRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/submission/image/graded/%d", submitted.Data.SubmissionID), token, nil)
	resp, err = app.Test(imageReq, 5000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, []byte("annotated-jpeg-bytes"), raw)

	// Step 5: the analytics dashboard for the batch.
	analyticsReq := authedRequest(http.MethodGet, "/api/v1/analytics/test/"+batchTest, token, nil)
	resp, err = app.Test(analyticsReq, 5000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var analyticsResp struct {
		Data dto.TestAnalyticsResponse `json:"data"`
	}
	decode(t, resp, &analyticsResp)
	require.NotNil(t, analyticsResp.Data.Summary)
	require.Equal(t, 67.0, analyticsResp.Data.Summary.Low)
	require.Equal(t, 92.0, analyticsResp.Data.Summary.High)
	require.Equal(t, 79.8, analyticsResp.Data.Summary.Avg)
	require.Len(t, analyticsResp.Data.MissRates, 2)
}

func TestGatewayRejectsStudentMutations(t *testing.T) {
	teacherToken := signToken(t, 3, "teacher")
	upstream := fakeGradingService(t, teacherToken)
	app := setupGateway(t, upstream.URL)

	studentToken := signToken(t, 12, "student")
	courseBody, err := json.Marshal(dto.CourseCreateRequest{
		Name: "Physics 101", Subject: "PHYS", Section: 101, Semester: "fall", Year: 2026,
	})
	require.NoError(t, err)
	req := authedRequest(http.MethodPost, "/api/v1/course/", studentToken, bytes.NewReader(courseBody))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestGatewayRequiresAuthentication(t *testing.T) {
	teacherToken := signToken(t, 3, "teacher")
	upstream := fakeGradingService(t, teacherToken)
	app := setupGateway(t, upstream.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/course/", nil)
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

// TestGatewayLiveResults drives the websocket stream over a real listener; a
// dashboard holding the socket sees the graded sheet land.
func TestGatewayLiveResults(t *testing.T) {
	teacherToken := signToken(t, 3, "teacher")
	upstream := fakeGradingService(t, teacherToken)
	app := setupGateway(t, upstream.URL)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(listener) }()
	defer app.Shutdown()

	wsURL := "ws://" + listener.Addr().String() + "/api/v1/live/results"
	header := http.Header{"Authorization": []string{"Bearer " + teacherToken}}

	var conn *gorillaws.Conn
	require.Eventually(t, func() bool {
		c, _, dialErr := gorillaws.DefaultDialer.Dial(wsURL, header)
		if dialErr != nil {
			return false
		}
		conn = c
		return true
	}, 5*time.Second, 50*time.Millisecond)
	defer conn.Close()

	// Submit a sheet over plain HTTP against the same listener.
	var sheet bytes.Buffer
	require.NoError(t, jpeg.Encode(&sheet, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil))

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	require.NoError(t, writer.WriteField("test_id", batchTest))
	part, err := writer.CreateFormFile("submission_image", "sheet.jpg")
	require.NoError(t, err)
	_, err = part.Write(sheet.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	httpURL := "http://" + listener.Addr().String() + "/api/v1/submission/"
	submitReq, err := http.NewRequest(http.MethodPost, httpURL, &form)
	require.NoError(t, err)
	submitReq.Header.Set("Content-Type", writer.FormDataContentType())
	submitReq.Header.Set("Authorization", "Bearer "+teacherToken)

	resp, err := http.DefaultClient.Do(submitReq)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var event dto.ResultEvent
	require.NoError(t, conn.ReadJSON(&event))
	require.Equal(t, batchTest, event.TestID)
	require.Positive(t, event.SubmissionID)
}

func decode[T any](t *testing.T, resp *http.Response, target *T) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target), "body: %s", strings.TrimSpace(string(data)))
}
