package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chembot/internal/models"
	appErrors "chembot/pkg/errors"
)

type fakeStudentRepo struct {
	students map[int64]*models.Student
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[int64]*models.Student)}
}

func (f *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	if _, ok := f.students[student.UserID]; ok {
		return appErrors.Clone(appErrors.ErrAlreadyExists, "student already exists")
	}
	clone := *student
	f.students[student.UserID] = &clone
	return nil
}

func (f *fakeStudentRepo) Find(_ context.Context, userID int64) (*models.Student, error) {
	student, ok := f.students[userID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	clone := *student
	return &clone, nil
}

func (f *fakeStudentRepo) FindAll(_ context.Context) ([]models.Student, error) {
	result := make([]models.Student, 0, len(f.students))
	for _, st := range f.students {
		result = append(result, *st)
	}
	return result, nil
}

func (f *fakeStudentRepo) Update(_ context.Context, userID int64, update models.StudentUpdate) error {
	student, ok := f.students[userID]
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	if update.Username != nil {
		student.Username = update.Username
	}
	if update.Schedule != nil {
		student.Schedule = *update.Schedule
	}
	if update.Homework != nil {
		student.Homework = *update.Homework
	}
	return nil
}

func (f *fakeStudentRepo) Delete(_ context.Context, userID int64) error {
	delete(f.students, userID)
	return nil
}

func (f *fakeStudentRepo) AddLecture(_ context.Context, userID int64, lectureID string) error {
	student, ok := f.students[userID]
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	if !student.HasLecture(lectureID) {
		student.Lectures = append(student.Lectures, lectureID)
	}
	return nil
}

func (f *fakeStudentRepo) RemoveLecture(_ context.Context, userID int64, lectureID string) error {
	student, ok := f.students[userID]
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	kept := student.Lectures[:0]
	for _, id := range student.Lectures {
		if id != lectureID {
			kept = append(kept, id)
		}
	}
	student.Lectures = kept
	return nil
}

type fakeCatalog struct {
	known map[string]struct{}
}

func (f *fakeCatalog) Exists(_ context.Context, lectureID string) (bool, error) {
	_, ok := f.known[lectureID]
	return ok, nil
}

func TestStudentServiceCreate(t *testing.T) {
	repo := newFakeStudentRepo()
	svc := NewStudentService(repo, &fakeCatalog{}, nil, nil)
	ctx := context.Background()

	username := "alice"
	start := time.Now().UTC()
	student, err := svc.Create(ctx, CreateStudentRequest{UserID: 111, Username: &username, Schedule: "Mon 10:00"})
	require.NoError(t, err)
	end := time.Now().UTC()

	assert.Equal(t, int64(111), student.UserID)
	assert.Empty(t, student.Lectures)
	assert.False(t, student.CreatedAt.Before(start))
	assert.False(t, student.CreatedAt.After(end))
}

func TestStudentServiceCreateValidation(t *testing.T) {
	svc := NewStudentService(newFakeStudentRepo(), &fakeCatalog{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateStudentRequest{UserID: 111})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Create(context.Background(), CreateStudentRequest{Schedule: "Mon"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestStudentServiceCreateDuplicate(t *testing.T) {
	repo := newFakeStudentRepo()
	svc := NewStudentService(repo, &fakeCatalog{}, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateStudentRequest{UserID: 111, Schedule: "Mon"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateStudentRequest{UserID: 111, Schedule: "Tue"})
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyExists))
}

func TestStudentServiceAssignLectureChecksCatalog(t *testing.T) {
	repo := newFakeStudentRepo()
	catalog := &fakeCatalog{known: map[string]struct{}{"lec-1": {}}}
	svc := NewStudentService(repo, catalog, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateStudentRequest{UserID: 111, Schedule: "Mon"})
	require.NoError(t, err)

	// unknown lectures cannot be assigned
	err = svc.AssignLecture(ctx, 111, "ghost")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	require.NoError(t, svc.AssignLecture(ctx, 111, "lec-1"))

	student, err := svc.Get(ctx, 111)
	require.NoError(t, err)
	assert.Equal(t, []string{"lec-1"}, student.Lectures)

	// once assigned, the reference survives catalog deletion; unassign
	// does not consult the catalog
	delete(catalog.known, "lec-1")
	require.NoError(t, svc.UnassignLecture(ctx, 111, "lec-1"))
}

func TestStudentServiceSetters(t *testing.T) {
	repo := newFakeStudentRepo()
	svc := NewStudentService(repo, &fakeCatalog{}, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateStudentRequest{UserID: 111, Schedule: "Mon"})
	require.NoError(t, err)

	require.NoError(t, svc.SetSchedule(ctx, 111, "Fri 09:00"))
	require.NoError(t, svc.SetHomework(ctx, 111, "chapter 4"))

	student, err := svc.Get(ctx, 111)
	require.NoError(t, err)
	assert.Equal(t, "Fri 09:00", student.Schedule)
	assert.Equal(t, "chapter 4", student.Homework)
}
