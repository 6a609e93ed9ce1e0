package playback

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// Resource is a playable audio location that must be released when done.
type Resource interface {
	Location() string
	Release() error
}

// FileResource is audio written to a temporary file. Release removes it.
type FileResource struct {
	path string
	once sync.Once
	err  error
}

// NewFileResource writes data to a new temporary file. ext is the file
// extension without the dot, "wav" when empty.
func NewFileResource(data []byte, ext string) (*FileResource, error) {
	if ext == "" {
		ext = "wav"
	}
	f, err := os.CreateTemp("", "voxctl-*."+ext)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to close audio file: %w", err)
	}
	return &FileResource{path: f.Name()}, nil
}

// Location returns the file path.
func (r *FileResource) Location() string {
	return r.path
}

// Release removes the file. Later calls return the first result.
func (r *FileResource) Release() error {
	r.once.Do(func() {
		if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			r.err = err
		}
	})
	return r.err
}
