package service

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chembot/internal/models"
	appErrors "chembot/pkg/errors"
	"chembot/pkg/storage"
)

type fakeLectureRepo struct {
	names map[string]string
	files map[string]*models.LectureFile
}

func newFakeLectureRepo() *fakeLectureRepo {
	return &fakeLectureRepo{
		names: make(map[string]string),
		files: make(map[string]*models.LectureFile),
	}
}

func (f *fakeLectureRepo) Add(_ context.Context, lectureID, name string) error {
	f.names[lectureID] = name
	return nil
}

func (f *fakeLectureRepo) Find(_ context.Context, lectureID string) (*models.Lecture, error) {
	name, ok := f.names[lectureID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "lecture not found")
	}
	return &models.Lecture{ID: lectureID, Name: name, File: f.files[lectureID]}, nil
}

func (f *fakeLectureRepo) FindAll(_ context.Context) ([]models.Lecture, error) {
	result := make([]models.Lecture, 0, len(f.names))
	for id, name := range f.names {
		result = append(result, models.Lecture{ID: id, Name: name, File: f.files[id]})
	}
	return result, nil
}

func (f *fakeLectureRepo) Rename(_ context.Context, lectureID, name string) error {
	if _, ok := f.names[lectureID]; !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "lecture not found")
	}
	f.names[lectureID] = name
	return nil
}

func (f *fakeLectureRepo) Delete(_ context.Context, lectureID string) error {
	if _, ok := f.names[lectureID]; !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "lecture not found")
	}
	delete(f.names, lectureID)
	delete(f.files, lectureID)
	return nil
}

func (f *fakeLectureRepo) SetFile(_ context.Context, lectureID string, file *models.LectureFile) error {
	f.files[lectureID] = file
	return nil
}

func (f *fakeLectureRepo) File(_ context.Context, lectureID string) (*models.LectureFile, error) {
	file, ok := f.files[lectureID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "lecture file not found")
	}
	return file, nil
}

type fakeFileStore struct {
	saved map[string][]byte
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{saved: make(map[string][]byte)}
}

func (f *fakeFileStore) Save(filename string, data []byte) (string, error) {
	f.saved[filename] = data
	return filename, nil
}

func (f *fakeFileStore) Delete(filename string) error {
	delete(f.saved, filename)
	return nil
}

func (f *fakeFileStore) Path(filename string) string {
	return "/store/" + filename
}

func TestLectureServiceCreateDistinctIDs(t *testing.T) {
	svc := NewLectureService(newFakeLectureRepo(), newFakeFileStore(), nil)
	ctx := context.Background()

	// back-to-back creates within the same clock tick must not collide
	first, err := svc.Create(ctx, "Atoms")
	require.NoError(t, err)
	second, err := svc.Create(ctx, "Atoms")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	seen := map[string]struct{}{first: {}, second: {}}
	for i := 0; i < 100; i++ {
		id, err := svc.Create(ctx, "Bonds")
		require.NoError(t, err)
		_, dup := seen[id]
		assert.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestLectureServiceCreateRequiresName(t *testing.T) {
	svc := NewLectureService(newFakeLectureRepo(), newFakeFileStore(), nil)

	_, err := svc.Create(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestLectureServiceAttachFile(t *testing.T) {
	repo := newFakeLectureRepo()
	store := newFakeFileStore()
	svc := NewLectureService(repo, store, nil)
	ctx := context.Background()

	lectureID, err := svc.Create(ctx, "Atoms")
	require.NoError(t, err)

	file, err := svc.AttachFile(ctx, lectureID, "atoms.pdf", []byte("pdf bytes"))
	require.NoError(t, err)
	assert.Equal(t, "atoms.pdf", file.Filename)
	assert.Equal(t, lectureID+"_atoms.pdf", file.Filepath)
	assert.Equal(t, []byte("pdf bytes"), store.saved[lectureID+"_atoms.pdf"])

	lecture, err := svc.Get(ctx, lectureID)
	require.NoError(t, err)
	assert.Equal(t, file, lecture.File)
}

func TestLectureServiceAttachFileSanitizesName(t *testing.T) {
	repo := newFakeLectureRepo()
	store := newFakeFileStore()
	svc := NewLectureService(repo, store, nil)
	ctx := context.Background()

	lectureID, err := svc.Create(ctx, "Atoms")
	require.NoError(t, err)

	// path separators in the name must not escape the lectures directory
	file, err := svc.AttachFile(ctx, lectureID, "a/../../escape.pdf", []byte("pdf"))
	require.NoError(t, err)
	assert.Equal(t, "escape.pdf", file.Filename)
	assert.Equal(t, lectureID+"_escape.pdf", file.Filepath)
	assert.Contains(t, store.saved, lectureID+"_escape.pdf")

	_, err = svc.AttachFile(ctx, lectureID, "  ", []byte("pdf"))
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestLectureServiceAttachFileUnknownLecture(t *testing.T) {
	store := newFakeFileStore()
	svc := NewLectureService(newFakeLectureRepo(), store, nil)

	_, err := svc.AttachFile(context.Background(), "ghost", "x.pdf", []byte("x"))
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Empty(t, store.saved)
}

func TestLectureServiceDeleteRemovesStoredFile(t *testing.T) {
	repo := newFakeLectureRepo()
	store := newFakeFileStore()
	svc := NewLectureService(repo, store, nil)
	ctx := context.Background()

	lectureID, err := svc.Create(ctx, "Atoms")
	require.NoError(t, err)
	_, err = svc.AttachFile(ctx, lectureID, "atoms.pdf", []byte("pdf"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, lectureID))

	_, err = svc.Get(ctx, lectureID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Empty(t, store.saved)
}

func TestLectureServiceDeleteWithoutFile(t *testing.T) {
	svc := NewLectureService(newFakeLectureRepo(), newFakeFileStore(), nil)
	ctx := context.Background()

	lectureID, err := svc.Create(ctx, "Atoms")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, lectureID))
}

// Attach, resolve and delete through a real on-disk store with a
// relative base dir: the persisted Filepath must resolve back to the
// written file and Delete must actually remove it.
func TestLectureServiceFileLifecycleOnDisk(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	store, err := storage.NewLectureStore("./lectures")
	require.NoError(t, err)
	svc := NewLectureService(newFakeLectureRepo(), store, nil)
	ctx := context.Background()

	lectureID, err := svc.Create(ctx, "Atoms")
	require.NoError(t, err)
	_, err = svc.AttachFile(ctx, lectureID, "atoms.pdf", []byte("pdf bytes"))
	require.NoError(t, err)

	path, err := svc.FilePath(ctx, lectureID)
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf bytes"), content)

	require.NoError(t, svc.Delete(ctx, lectureID))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLectureServiceFilePath(t *testing.T) {
	svc := NewLectureService(newFakeLectureRepo(), newFakeFileStore(), nil)
	ctx := context.Background()

	lectureID, err := svc.Create(ctx, "Atoms")
	require.NoError(t, err)

	_, err = svc.FilePath(ctx, lectureID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	_, err = svc.AttachFile(ctx, lectureID, "atoms.pdf", []byte("pdf"))
	require.NoError(t, err)

	path, err := svc.FilePath(ctx, lectureID)
	require.NoError(t, err)
	assert.Equal(t, "/store/"+lectureID+"_atoms.pdf", path)
}
