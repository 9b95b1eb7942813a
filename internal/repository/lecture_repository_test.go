package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chembot/internal/models"
	appErrors "chembot/pkg/errors"
)

func TestLectureAddAndFind(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewLectureRepository(client, nil)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "lec-1", "Atoms"))

	lecture, err := repo.Find(ctx, "lec-1")
	require.NoError(t, err)
	assert.Equal(t, "Atoms", lecture.Name)
	assert.Nil(t, lecture.File)

	exists, err := repo.Exists(ctx, "lec-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLectureFindMissing(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewLectureRepository(client, nil)

	_, err := repo.Find(context.Background(), "nope")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestLectureFileMetadata(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewLectureRepository(client, nil)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "lec-1", "Atoms"))

	file := &models.LectureFile{
		Filename:  "atoms.pdf",
		Filepath:  "/lectures/lec-1_atoms.pdf",
		CreatedAt: time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.SetFile(ctx, "lec-1", file))

	lecture, err := repo.Find(ctx, "lec-1")
	require.NoError(t, err)
	require.NotNil(t, lecture.File)
	assert.Equal(t, file, lecture.File)

	got, err := repo.File(ctx, "lec-1")
	require.NoError(t, err)
	assert.Equal(t, file, got)
}

func TestLectureFindAllSorted(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewLectureRepository(client, nil)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "lec-2", "Bonds"))
	require.NoError(t, repo.Add(ctx, "lec-1", "Atoms"))

	lectures, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, lectures, 2)
	assert.Equal(t, "Atoms", lectures[0].Name)
	assert.Equal(t, "Bonds", lectures[1].Name)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestLectureRename(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewLectureRepository(client, nil)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "lec-1", "Atoms"))
	require.NoError(t, repo.Rename(ctx, "lec-1", "Atoms and ions"))

	lecture, err := repo.Find(ctx, "lec-1")
	require.NoError(t, err)
	assert.Equal(t, "Atoms and ions", lecture.Name)

	err = repo.Rename(ctx, "nope", "x")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestLectureDeleteRemovesMetadataButNotStudentRefs(t *testing.T) {
	_, client := newTestClient(t)
	lectures := NewLectureRepository(client, nil)
	students := NewStudentRepository(client, nil)
	ctx := context.Background()

	require.NoError(t, students.Create(ctx, newStudent(111, strPtr("alice"), "Mon 10:00")))
	require.NoError(t, lectures.Add(ctx, "lec-1", "Atoms"))
	require.NoError(t, lectures.SetFile(ctx, "lec-1", &models.LectureFile{
		Filename:  "atoms.pdf",
		Filepath:  "/lectures/atoms.pdf",
		CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, students.AddLecture(ctx, 111, "lec-1"))

	require.NoError(t, lectures.Delete(ctx, "lec-1"))

	_, err := lectures.Find(ctx, "lec-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	_, err = lectures.File(ctx, "lec-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	// the student's reference stays; stale references are the contract
	student, err := students.Find(ctx, 111)
	require.NoError(t, err)
	assert.Equal(t, []string{"lec-1"}, student.Lectures)
}

func TestLectureDeleteMissing(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewLectureRepository(client, nil)

	err := repo.Delete(context.Background(), "nope")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
