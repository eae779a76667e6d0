package capture

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
)

// MJPEGSource reads frames from a network camera that serves an MJPEG stream
// (multipart/x-mixed-replace), the common interface of document-camera and
// IP-webcam setups used at a grading station.
type MJPEGSource struct {
	mu     sync.Mutex
	body   io.Closer
	reader *multipart.Reader
}

// OpenMJPEG connects to the camera URL. A connection or content-type failure
// is reported as ErrUnavailable so callers can fall back to files.
func OpenMJPEG(ctx context.Context, url string) (*MJPEGSource, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: no camera configured", ErrUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: camera returned status %d", ErrUnavailable, resp.StatusCode)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") || params["boundary"] == "" {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: camera does not serve an mjpeg stream", ErrUnavailable)
	}

	return &MJPEGSource{
		body:   resp.Body,
		reader: multipart.NewReader(resp.Body, params["boundary"]),
	}, nil
}

// Grab returns the next frame from the stream.
func (s *MJPEGSource) Grab(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	part, err := s.reader.NextPart()
	if err != nil {
		return nil, fmt.Errorf("read camera stream: %w", err)
	}
	defer part.Close()

	frame, err := io.ReadAll(part)
	if err != nil {
		return nil, fmt.Errorf("read camera frame: %w", err)
	}

	return frame, nil
}

// Close terminates the camera connection.
func (s *MJPEGSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.body.Close()
}
