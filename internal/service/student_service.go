package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"chembot/internal/models"
	appErrors "chembot/pkg/errors"
)

type studentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	Find(ctx context.Context, userID int64) (*models.Student, error)
	FindAll(ctx context.Context) ([]models.Student, error)
	Update(ctx context.Context, userID int64, update models.StudentUpdate) error
	Delete(ctx context.Context, userID int64) error
	AddLecture(ctx context.Context, userID int64, lectureID string) error
	RemoveLecture(ctx context.Context, userID int64, lectureID string) error
}

type lectureCatalog interface {
	Exists(ctx context.Context, lectureID string) (bool, error)
}

// CreateStudentRequest holds payload for registering students.
type CreateStudentRequest struct {
	UserID   int64   `json:"user_id" validate:"required"`
	Username *string `json:"username"`
	Schedule string  `json:"schedule" validate:"required"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	catalog   lectureCatalog
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, catalog lectureCatalog, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, catalog: catalog, validator: validate, logger: logger}
}

// Create registers a new student with an empty lecture set. Duplicate user
// IDs are rejected.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student := &models.Student{
		UserID:    req.UserID,
		Username:  req.Username,
		Schedule:  req.Schedule,
		Lectures:  []string{},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, err
	}
	s.logger.Info("student registered", zap.Int64("user_id", req.UserID))
	return student, nil
}

// Get returns a student record or NotFound.
func (s *StudentService) Get(ctx context.Context, userID int64) (*models.Student, error) {
	return s.repo.Find(ctx, userID)
}

// List returns all students ordered by user ID.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	return s.repo.FindAll(ctx)
}

// Update applies a partial update to the mutable fields.
func (s *StudentService) Update(ctx context.Context, userID int64, update models.StudentUpdate) error {
	return s.repo.Update(ctx, userID, update)
}

// SetSchedule replaces the student's schedule text.
func (s *StudentService) SetSchedule(ctx context.Context, userID int64, schedule string) error {
	return s.repo.Update(ctx, userID, models.StudentUpdate{Schedule: &schedule})
}

// SetHomework replaces the student's homework text.
func (s *StudentService) SetHomework(ctx context.Context, userID int64, homework string) error {
	return s.repo.Update(ctx, userID, models.StudentUpdate{Homework: &homework})
}

// Delete removes the student. Idempotent.
func (s *StudentService) Delete(ctx context.Context, userID int64) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("student deleted", zap.Int64("user_id", userID))
	return nil
}

// AssignLecture links a lecture to a student. The lecture must exist in
// the catalog at assignment time; once assigned, a later catalog deletion
// leaves the reference in place (documented stale-reference contract).
func (s *StudentService) AssignLecture(ctx context.Context, userID int64, lectureID string) error {
	exists, err := s.catalog.Exists(ctx, lectureID)
	if err != nil {
		return err
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrNotFound, "lecture not found")
	}
	return s.repo.AddLecture(ctx, userID, lectureID)
}

// UnassignLecture removes a lecture link. Removing an absent link is a
// no-op.
func (s *StudentService) UnassignLecture(ctx context.Context, userID int64, lectureID string) error {
	return s.repo.RemoveLecture(ctx, userID, lectureID)
}
