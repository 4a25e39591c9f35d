package source

import (
	"context"
	"fmt"
	"io"
	"os"
)

// FileSource reads the track file from local disk.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open track file: %w", err)
	}
	return f, nil
}

func (s *FileSource) String() string { return "file:" + s.path }
