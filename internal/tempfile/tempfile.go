package tempfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// File is a scoped temporary file: created under a unique generated name,
// exclusively owned by one request. Cleanup must run on every exit path.
type File struct {
	path string
}

// Write copies data into a fresh uniquely named file under dir (the system
// temp dir when dir is empty), keeping ext so the upstream API can sniff
// the container format from the filename.
func Write(dir, ext string, data io.Reader) (*File, error) {
	if dir == "" {
		dir = os.TempDir()
	}

	path := filepath.Join(dir, fmt.Sprintf("upload-%s%s", uuid.New().String(), ext))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(f, data); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	return &File{path: path}, nil
}

func (f *File) Path() string {
	return f.path
}

// Cleanup removes the file. Safe to call more than once.
func (f *File) Cleanup() error {
	if f == nil || f.path == "" {
		return nil
	}
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove temp file: %w", err)
	}
	return nil
}
