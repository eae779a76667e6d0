// Package capture acquires still images of physical answer sheets, either
// from a live camera stream or from files picked by the user.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"
	"sync"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnavailable indicates no camera stream can be acquired. Callers route
// the user to the file-picker fallback.
var ErrUnavailable = errors.New("capture unavailable")

// ErrStreamStopped is returned by Snapshot after the stream was torn down.
var ErrStreamStopped = errors.New("capture stream stopped")

// FrameSource produces raw encoded frames from some capture backend.
type FrameSource interface {
	// Grab blocks until the next frame is available and returns its encoded
	// bytes (JPEG or PNG).
	Grab(ctx context.Context) ([]byte, error)
	Close() error
}

// Track represents one live media track held by a stream. The teardown
// contract is strict: once the owning stream stops, every track must report
// stopped so no hardware handle leaks.
type Track struct {
	Kind string

	mu      sync.Mutex
	stopped bool
}

// Stop marks the track stopped. Safe to call repeatedly.
func (t *Track) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

// Stopped reports whether the track has been released.
func (t *Track) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Stream owns exactly one frame source and its tracks. Discarding a captured
// image and returning to live preview is just another Snapshot call; the
// stream keeps running until Stop.
type Stream struct {
	mu      sync.Mutex
	source  FrameSource
	tracks  []*Track
	stopped bool
}

// NewStream wraps a frame source in a stream with a single video track.
func NewStream(source FrameSource) *Stream {
	return &Stream{
		source: source,
		tracks: []*Track{{Kind: "video"}},
	}
}

// Snapshot grabs the current frame and returns it as encoded JPEG bytes,
// transcoding PNG frames when the backend produces those.
func (s *Stream) Snapshot(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil, ErrStreamStopped
	}
	source := s.source
	s.mu.Unlock()

	frame, err := source.Grab(ctx)
	if err != nil {
		return nil, fmt.Errorf("grab frame: %w", err)
	}

	return asJPEG(frame)
}

// Stop releases the source and every track. Idempotent: repeated calls are
// no-ops, and ActiveTracks is zero from the first call onward.
func (s *Stream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true

	for _, track := range s.tracks {
		track.Stop()
	}
	if s.source != nil {
		s.source.Close()
	}
}

// ActiveTracks counts the tracks not yet released.
func (s *Stream) ActiveTracks() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := 0
	for _, track := range s.tracks {
		if !track.Stopped() {
			active++
		}
	}
	return active
}

func asJPEG(frame []byte) ([]byte, error) {
	kind := mimetype.Detect(frame)
	switch {
	case kind.Is("image/jpeg"):
		return frame, nil
	case kind.Is("image/png"):
		decoded, err := png.Decode(bytes.NewReader(frame))
		if err != nil {
			return nil, fmt.Errorf("decode png frame: %w", err)
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, decoded, nil); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported frame type %s", kind.String())
	}
}
