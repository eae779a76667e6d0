package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/livetest-app/livetest/internal/analytics"
	"github.com/livetest-app/livetest/internal/capture"
	"github.com/livetest-app/livetest/internal/config"
	"github.com/livetest-app/livetest/internal/dto"
	"github.com/livetest-app/livetest/internal/service"
	"github.com/livetest-app/livetest/internal/session"
	"github.com/livetest-app/livetest/pkg/grader"
)

func main() {
	testID := flag.String("test", "", "test identifier to submit sheets against (required)")
	email := flag.String("email", "", "login email; omitted when a saved session exists")
	password := flag.String("password", "", "login password")
	outDir := flag.String("out", "", "directory to save graded images into; empty skips saving")
	summarize := flag.Bool("summary", true, "print the grade summary and distribution after the batch")
	logout := flag.Bool("logout", false, "clear the saved session and exit")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	if *logout {
		if err := session.Clear(cfg.SessionFile); err != nil {
			logger.Fatal().Err(err).Msg("failed to clear session")
		}
		fmt.Println("session cleared")
		return
	}

	if *testID == "" {
		flag.Usage()
		logger.Fatal().Msg("-test is required")
	}

	graderClient, err := grader.New(grader.Config{
		BaseURL: cfg.GraderBaseURL,
		Timeout: cfg.GraderTimeout,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create grading client")
	}

	ctx := context.Background()

	sess, err := establishSession(ctx, cfg, graderClient, *email, *password)
	if err != nil {
		logger.Fatal().Err(err).Msg("login failed")
	}
	fmt.Printf("signed in as %s (%s)\n", sess.Name, sess.Role)

	test, err := graderClient.GetTest(ctx, sess.AccessToken, *testID)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not fetch test")
	}
	if !test.AcceptsSubmissions(time.Now()) {
		logger.Fatal().Str("state", test.State(time.Now())).Msg("test is not accepting submissions")
	}
	fmt.Printf("scanning for %q (%d questions)\n", test.Name, test.NumQuestions)

	source, kind, err := openSource(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("no sheet source available")
	}
	fmt.Printf("sheet source: %s\n", kind)

	stream := capture.NewStream(source)
	defer stream.Stop()

	validate := validator.New(validator.WithRequiredStructEnabled())
	coordinator := service.NewCoordinator(graderClient, validate, nil, cfg.AutoResetDelay, logger)
	defer coordinator.Close()

	graded, failed := runBatch(ctx, coordinator, stream, *testID, *outDir, sess.AccessToken, cfg.AutoResetDelay, logger)

	stream.Stop()
	fmt.Printf("batch finished: %d graded, %d failed, %d tracks live\n", graded, failed, stream.ActiveTracks())

	if *summarize && graded > 0 {
		if err := printSummary(ctx, graderClient, sess.AccessToken, *testID); err != nil {
			logger.Warn().Err(err).Msg("could not fetch batch summary")
		}
	}
}

// establishSession reuses the saved session when one exists, otherwise logs
// in with the provided credentials and saves the result for the next run.
func establishSession(ctx context.Context, cfg config.Config, client *grader.Client, email, password string) (session.Session, error) {
	if sess, err := session.Load(cfg.SessionFile); err == nil && sess.Valid() {
		return sess, nil
	} else if err != nil && !errors.Is(err, session.ErrNotFound) {
		return session.Session{}, err
	}

	if email == "" || password == "" {
		return session.Session{}, errors.New("no saved session; pass -email and -password")
	}

	identity, err := client.Login(ctx, email, password)
	if err != nil {
		return session.Session{}, err
	}

	sess := session.Session{
		UserID:      identity.UserID,
		Email:       identity.Email,
		Name:        identity.Name,
		Role:        identity.Role,
		AccessToken: identity.AccessToken,
	}
	if err := session.Save(cfg.SessionFile, sess); err != nil {
		return session.Session{}, err
	}

	return sess, nil
}

// openSource prefers the network camera and falls back to scanning image
// files from the configured sheet directory when no camera answers.
func openSource(ctx context.Context, cfg config.Config) (capture.FrameSource, string, error) {
	if cfg.CameraURL != "" {
		source, err := capture.OpenMJPEG(ctx, cfg.CameraURL)
		if err == nil {
			return source, "camera " + cfg.CameraURL, nil
		}
		if !errors.Is(err, capture.ErrUnavailable) {
			return nil, "", err
		}
	}

	if cfg.SheetDir == "" {
		return nil, "", capture.ErrUnavailable
	}
	source, err := capture.NewDirSource(cfg.SheetDir)
	if err != nil {
		return nil, "", err
	}
	return source, "directory " + cfg.SheetDir, nil
}

// runBatch snapshots and submits sheets until the source is exhausted or the
// operator interrupts. Between sheets it waits for the coordinator to reset
// so each outcome stays on screen long enough to read.
func runBatch(ctx context.Context, coordinator *service.Coordinator, stream *capture.Stream, testID, outDir, token string, resetDelay time.Duration, logger zerolog.Logger) (graded, failed int) {
	for sheet := 1; ; sheet++ {
		frame, err := stream.Snapshot(ctx)
		if errors.Is(err, io.EOF) {
			return graded, failed
		}
		if err != nil {
			logger.Error().Err(err).Msg("snapshot failed")
			return graded, failed
		}

		if sheet == 1 {
			printGuide(frame)
		}

		outcome, err := coordinator.Submit(ctx, token, dto.SubmissionCreateRequest{TestID: testID}, frame, fmt.Sprintf("sheet-%03d.jpg", sheet))
		if err != nil {
			failed++
			var apiErr *grader.APIError
			switch {
			case errors.As(err, &apiErr):
				fmt.Printf("sheet %d rejected: %s\n", sheet, apiErr.Detail)
			case errors.Is(err, grader.ErrUnreachable):
				fmt.Printf("sheet %d failed: grading service unreachable\n", sheet)
			default:
				fmt.Printf("sheet %d failed: %v\n", sheet, err)
			}
		} else {
			graded++
			fmt.Printf("sheet %d graded: submission %d\n", sheet, outcome.Response.SubmissionID)
			if !outcome.Response.GradedImageReady {
				fmt.Printf("  graded image unavailable: %s\n", outcome.Response.GradedImageError)
			} else if outDir != "" {
				saveGradedImage(outDir, outcome.Response.SubmissionID, outcome.GradedImage, logger)
			}
		}

		waitForReady(coordinator, resetDelay)
	}
}

// printGuide reports where to hold the sheet inside the first frame, same
// placement the capture overlay uses.
func printGuide(frame []byte) {
	dims, _, err := image.DecodeConfig(bytes.NewReader(frame))
	if err != nil {
		return
	}
	box := capture.Guide(float64(dims.Width), float64(dims.Height))
	fmt.Printf("align sheet inside %.0fx%.0f box at (%.0f, %.0f) of the %dx%d frame\n",
		box.Width, box.Height, box.X, box.Y, dims.Width, dims.Height)
}

func saveGradedImage(dir string, submissionID int, data []byte, logger zerolog.Logger) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn().Err(err).Msg("could not create output directory")
		return
	}
	path := filepath.Join(dir, fmt.Sprintf("graded-%d.jpg", submissionID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("could not save graded image")
		return
	}
	fmt.Printf("  graded image saved to %s\n", path)
}

func waitForReady(coordinator *service.Coordinator, resetDelay time.Duration) {
	deadline := time.Now().Add(resetDelay + time.Second)
	for time.Now().Before(deadline) {
		if coordinator.State() == service.StateReady {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// printSummary renders the batch grade summary and a text histogram.
func printSummary(ctx context.Context, client *grader.Client, token, testID string) error {
	submissions, err := client.SubmissionsByTest(ctx, token, testID)
	if err != nil {
		return err
	}

	grades := analytics.Grades(submissions)
	summary, ok := analytics.Summarize(grades)
	if !ok {
		fmt.Println("summary: N/A (no grades recorded)")
		return nil
	}

	fmt.Printf("summary: low %.2f / high %.2f / avg %.2f over %d sheets\n",
		summary.Low, summary.High, summary.Avg, summary.Count)

	for _, bucket := range analytics.Histogram(grades) {
		fmt.Printf("%4d | %s (%d)\n", bucket.LowerBound, strings.Repeat("#", bucket.Count), bucket.Count)
	}

	return nil
}
