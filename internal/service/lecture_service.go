package service

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chembot/internal/models"
	appErrors "chembot/pkg/errors"
)

type lectureRepository interface {
	Add(ctx context.Context, lectureID, name string) error
	Find(ctx context.Context, lectureID string) (*models.Lecture, error)
	FindAll(ctx context.Context) ([]models.Lecture, error)
	Rename(ctx context.Context, lectureID, name string) error
	Delete(ctx context.Context, lectureID string) error
	SetFile(ctx context.Context, lectureID string, file *models.LectureFile) error
	File(ctx context.Context, lectureID string) (*models.LectureFile, error)
}

type fileStore interface {
	Save(filename string, data []byte) (string, error)
	Delete(filename string) error
	Path(filename string) string
}

// LectureService handles the catalog and the on-disk lecture files.
type LectureService struct {
	repo   lectureRepository
	files  fileStore
	logger *zap.Logger
}

// NewLectureService constructs the lecture service.
func NewLectureService(repo lectureRepository, files fileStore, logger *zap.Logger) *LectureService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LectureService{repo: repo, files: files, logger: logger}
}

// Create adds a catalog entry and returns its generated ID. IDs are random
// UUIDs, so two lectures created within the same clock tick never collide.
func (s *LectureService) Create(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "lecture name is required")
	}

	lectureID := uuid.NewString()
	if err := s.repo.Add(ctx, lectureID, name); err != nil {
		return "", err
	}
	s.logger.Info("lecture added", zap.String("lecture_id", lectureID), zap.String("name", name))
	return lectureID, nil
}

// AttachFile stores the uploaded bytes on disk and records the metadata
// sub-record. The filename is reduced to its base name so a crafted name
// cannot point outside the lectures directory. The disk write is atomic
// (temp file + rename), so a crash mid-upload never leaves metadata
// pointing at a half-written file.
func (s *LectureService) AttachFile(ctx context.Context, lectureID, filename string, data []byte) (*models.LectureFile, error) {
	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "." || filename == string(filepath.Separator) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file name is required")
	}

	if _, err := s.repo.Find(ctx, lectureID); err != nil {
		return nil, err
	}

	stored, err := s.files.Save(lectureID+"_"+filename, data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store lecture file")
	}

	file := &models.LectureFile{
		Filename:  filename,
		Filepath:  stored,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.SetFile(ctx, lectureID, file); err != nil {
		return nil, err
	}
	return file, nil
}

// Get returns a catalog entry joined with file metadata.
func (s *LectureService) Get(ctx context.Context, lectureID string) (*models.Lecture, error) {
	return s.repo.Find(ctx, lectureID)
}

// List returns the whole catalog.
func (s *LectureService) List(ctx context.Context) ([]models.Lecture, error) {
	return s.repo.FindAll(ctx)
}

// Rename updates the catalog name for an existing lecture.
func (s *LectureService) Rename(ctx context.Context, lectureID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return appErrors.Clone(appErrors.ErrValidation, "lecture name is required")
	}
	return s.repo.Rename(ctx, lectureID, name)
}

// Delete removes the catalog entry, the metadata sub-record and the stored
// file. Student references are not cascaded; see AssignLecture.
func (s *LectureService) Delete(ctx context.Context, lectureID string) error {
	file, err := s.repo.File(ctx, lectureID)
	if err != nil && !appErrors.Is(err, appErrors.ErrNotFound) {
		return err
	}

	if err := s.repo.Delete(ctx, lectureID); err != nil {
		return err
	}

	if file != nil {
		if err := s.files.Delete(file.Filepath); err != nil {
			// The record is already gone; an orphaned file is logged, not fatal.
			s.logger.Warn("failed to remove lecture file", zap.String("lecture_id", lectureID), zap.Error(err))
		}
	}
	s.logger.Info("lecture deleted", zap.String("lecture_id", lectureID))
	return nil
}

// FilePath resolves the on-disk location of a lecture's file.
func (s *LectureService) FilePath(ctx context.Context, lectureID string) (string, error) {
	file, err := s.repo.File(ctx, lectureID)
	if err != nil {
		return "", err
	}
	return s.files.Path(file.Filepath), nil
}
