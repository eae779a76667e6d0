package capture

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileSource is the file-picker fallback: it yields the selected image files
// in order, one frame per file.
type FileSource struct {
	mu     sync.Mutex
	frames [][]byte
	paths  []string
}

// NewFileSource builds a source over an explicit file selection.
func NewFileSource(paths ...string) *FileSource {
	return &FileSource{paths: paths}
}

// NewFileSourceFromBytes builds a source over already-loaded image payloads,
// as handed over by an upload form.
func NewFileSourceFromBytes(frames ...[]byte) *FileSource {
	return &FileSource{frames: frames}
}

// NewDirSource builds a source over every image file in a directory, sorted
// by name so a numbered stack of sheet photos is processed in order.
func NewDirSource(dir string) (*FileSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read sheet directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no sheet images in %s", dir)
	}

	return &FileSource{paths: paths}, nil
}

// Remaining reports how many files have not been grabbed yet.
func (s *FileSource) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames) + len(s.paths)
}

// Grab returns the next file's bytes, or io.EOF once the selection is
// exhausted.
func (s *FileSource) Grab(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if len(s.frames) > 0 {
		frame := s.frames[0]
		s.frames = s.frames[1:]
		s.mu.Unlock()
		return frame, nil
	}
	if len(s.paths) == 0 {
		s.mu.Unlock()
		return nil, io.EOF
	}
	path := s.paths[0]
	s.paths = s.paths[1:]
	s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sheet image: %w", err)
	}

	return data, nil
}

// Close releases nothing; file handles are not held between grabs.
func (s *FileSource) Close() error { return nil }
