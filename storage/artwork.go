package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gridsetter/models"

	"github.com/google/uuid"
)

// ErrWriteFailed matches every *WriteFailedError
var ErrWriteFailed = errors.New("write failed")

// WriteFailedError reports a failed artwork write and the final path it was
// meant for.
type WriteFailedError struct {
	Path string
	Err  error
}

func (e *WriteFailedError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteFailedError) Unwrap() error { return e.Err }

func (e *WriteFailedError) Is(target error) bool { return target == ErrWriteFailed }

// ArtworkWriter stores artwork in a Steam grid directory
type ArtworkWriter struct{}

// NewArtworkWriter creates a new artwork writer
func NewArtworkWriter() *ArtworkWriter {
	return &ArtworkWriter{}
}

// Write stores data under the filename Steam expects for appID and t, and
// returns the final path. The bytes are staged next to the target and
// renamed into place, so the final name never holds a partial image.
func (w *ArtworkWriter) Write(appID uint32, t models.ImageType, data []byte, dir string) (string, error) {
	name := t.Filename(appID)
	if name == "" {
		return "", &WriteFailedError{Path: dir, Err: fmt.Errorf("unknown image type %q", t)}
	}

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &WriteFailedError{Path: path, Err: err}
	}
	if err := writeFileAtomic(path, data, 0644); err != nil {
		return "", &WriteFailedError{Path: path, Err: err}
	}

	return path, nil
}

// writeFileAtomic writes data to a temporary file in the same directory as
// path and renames it over path.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmpPath := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	committed = true
	return nil
}
