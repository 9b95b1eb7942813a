package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"chembot/internal/models"
	"chembot/pkg/export"
)

type studentCounter interface {
	FindAll(ctx context.Context) ([]models.Student, error)
	RemoveLecture(ctx context.Context, userID int64, lectureID string) error
	Count(ctx context.Context) (int, error)
}

type lectureCounter interface {
	FindAll(ctx context.Context) ([]models.Lecture, error)
	Count(ctx context.Context) (int, error)
}

type storeAdmin interface {
	Ping(ctx context.Context) bool
	TotalKeys(ctx context.Context) (int64, error)
	FlushAll(ctx context.Context) error
}

// AdminService covers the observational and operational use-cases:
// liveness, statistics, roster exports, orphan cleanup and the explicit
// full wipe.
type AdminService struct {
	students studentCounter
	lectures lectureCounter
	store    storeAdmin
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewAdminService constructs the admin service.
func NewAdminService(students studentCounter, lectures lectureCounter, store storeAdmin, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		students: students,
		lectures: lectures,
		store:    store,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// Connected reports store reachability within a bounded time.
func (s *AdminService) Connected(ctx context.Context) bool {
	return s.store.Ping(ctx)
}

// Stats returns record counts and the keyspace size. Observational only.
func (s *AdminService) Stats(ctx context.Context) (*models.Stats, error) {
	students, err := s.students.Count(ctx)
	if err != nil {
		return nil, err
	}
	lectures, err := s.lectures.Count(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.store.TotalKeys(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Stats{Students: students, Lectures: lectures, TotalKeys: total}, nil
}

// ClearAll wipes both entity kinds irreversibly. Callers gate this behind
// an explicit confirmation; nothing triggers it implicitly.
func (s *AdminService) ClearAll(ctx context.Context) error {
	return s.store.FlushAll(ctx)
}

// CleanupOrphanedLectures strips references to lectures that no longer
// exist in the catalog from every student and returns how many were
// removed. This is the explicit maintenance counterpart of the
// no-cascade-on-delete contract.
func (s *AdminService) CleanupOrphanedLectures(ctx context.Context) (int, error) {
	lectures, err := s.lectures.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	known := make(map[string]struct{}, len(lectures))
	for _, l := range lectures {
		known[l.ID] = struct{}{}
	}

	students, err := s.students.FindAll(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, student := range students {
		for _, lectureID := range student.Lectures {
			if _, ok := known[lectureID]; ok {
				continue
			}
			if err := s.students.RemoveLecture(ctx, student.UserID, lectureID); err != nil {
				return removed, err
			}
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("orphaned lecture references removed", zap.Int("count", removed))
	}
	return removed, nil
}

// ExportStudentsCSV renders the student roster as CSV bytes.
func (s *AdminService) ExportStudentsCSV(ctx context.Context) ([]byte, error) {
	data, err := s.studentDataset(ctx)
	if err != nil {
		return nil, err
	}
	return s.csv.Render(data)
}

// ExportStudentsPDF renders the student roster as a tabular PDF.
func (s *AdminService) ExportStudentsPDF(ctx context.Context) ([]byte, error) {
	data, err := s.studentDataset(ctx)
	if err != nil {
		return nil, err
	}
	return s.pdf.Render(data, "Students")
}

// ExportLecturesCSV renders the catalog as CSV bytes.
func (s *AdminService) ExportLecturesCSV(ctx context.Context) ([]byte, error) {
	data, err := s.lectureDataset(ctx)
	if err != nil {
		return nil, err
	}
	return s.csv.Render(data)
}

// ExportLecturesPDF renders the catalog as a tabular PDF.
func (s *AdminService) ExportLecturesPDF(ctx context.Context) ([]byte, error) {
	data, err := s.lectureDataset(ctx)
	if err != nil {
		return nil, err
	}
	return s.pdf.Render(data, "Lectures")
}

func (s *AdminService) studentDataset(ctx context.Context) (export.Dataset, error) {
	students, err := s.students.FindAll(ctx)
	if err != nil {
		return export.Dataset{}, err
	}

	data := export.Dataset{Headers: []string{"user_id", "username", "schedule", "lectures", "created_at"}}
	for _, st := range students {
		username := ""
		if st.Username != nil {
			username = *st.Username
		}
		data.Rows = append(data.Rows, map[string]string{
			"user_id":    models.FormatUserID(st.UserID),
			"username":   username,
			"schedule":   st.Schedule,
			"lectures":   strconv.Itoa(len(st.Lectures)),
			"created_at": st.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	return data, nil
}

func (s *AdminService) lectureDataset(ctx context.Context) (export.Dataset, error) {
	lectures, err := s.lectures.FindAll(ctx)
	if err != nil {
		return export.Dataset{}, err
	}

	data := export.Dataset{Headers: []string{"id", "name"}}
	for _, l := range lectures {
		data.Rows = append(data.Rows, map[string]string{"id": l.ID, "name": l.Name})
	}
	return data, nil
}
