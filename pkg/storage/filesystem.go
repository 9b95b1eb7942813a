package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LectureStore persists lecture files on disk under a base directory.
type LectureStore struct {
	baseDir string
}

// NewLectureStore ensures the base directory exists and returns a handle.
func NewLectureStore(baseDir string) (*LectureStore, error) {
	if baseDir == "" {
		baseDir = "./lectures"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lectures directory: %w", err)
	}
	return &LectureStore{baseDir: baseDir}, nil
}

// Save writes the given bytes under the base dir and returns the storage
// name to feed back into Open, Path and Delete; callers never see the
// joined on-disk path. The write goes to a temp file first and is renamed
// into place, so a failed write never leaves a partial file at the final
// path.
func (s *LectureStore) Save(filename string, data []byte) (string, error) {
	path := s.resolve(filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare lecture directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp lecture file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write lecture file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close lecture file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("chmod lecture file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("finalise lecture file: %w", err)
	}
	return filename, nil
}

// SaveStream copies from reader into the target path with the same
// temp-then-rename discipline and return contract as Save.
func (s *LectureStore) SaveStream(filename string, r io.Reader) (string, error) {
	path := s.resolve(filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare lecture directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp lecture file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write lecture stream: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close lecture file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("chmod lecture file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("finalise lecture file: %w", err)
	}
	return filename, nil
}

// Open returns a read-only handle for the stored file.
func (s *LectureStore) Open(filename string) (*os.File, error) {
	path := s.resolve(filename)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lecture file: %w", err)
	}
	return file, nil
}

// Delete removes a stored file if present.
func (s *LectureStore) Delete(filename string) error {
	path := s.resolve(filename)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete lecture file: %w", err)
	}
	return nil
}

// Path exposes the resolved absolute path for a stored file.
func (s *LectureStore) Path(filename string) string {
	return s.resolve(filename)
}

func (s *LectureStore) resolve(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(s.baseDir, filename)
}
