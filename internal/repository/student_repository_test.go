package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chembot/internal/models"
	appErrors "chembot/pkg/errors"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func strPtr(value string) *string {
	return &value
}

func newStudent(userID int64, username *string, schedule string) *models.Student {
	return &models.Student{
		UserID:    userID,
		Username:  username,
		Schedule:  schedule,
		Lectures:  []string{},
		CreatedAt: time.Now().UTC(),
	}
}

func TestStudentCreateAndFind(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewStudentRepository(client, nil)
	ctx := context.Background()

	start := time.Now().UTC()
	student := newStudent(111, strPtr("alice"), "Mon 10:00")
	require.NoError(t, repo.Create(ctx, student))
	end := time.Now().UTC()

	got, err := repo.Find(ctx, 111)
	require.NoError(t, err)
	assert.Equal(t, int64(111), got.UserID)
	require.NotNil(t, got.Username)
	assert.Equal(t, "alice", *got.Username)
	assert.Equal(t, "Mon 10:00", got.Schedule)
	assert.Empty(t, got.Lectures)
	assert.False(t, got.CreatedAt.Before(start))
	assert.False(t, got.CreatedAt.After(end))
}

func TestStudentCreateNilUsername(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewStudentRepository(client, nil)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newStudent(222, nil, "Tue 17:00")))

	got, err := repo.Find(ctx, 222)
	require.NoError(t, err)
	assert.Nil(t, got.Username)
}

func TestStudentCreateDuplicateRejected(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewStudentRepository(client, nil)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newStudent(111, strPtr("alice"), "Mon 10:00")))

	err := repo.Create(ctx, newStudent(111, strPtr("impostor"), "Fri 09:00"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyExists))

	// the original record is untouched
	got, err := repo.Find(ctx, 111)
	require.NoError(t, err)
	assert.Equal(t, "alice", *got.Username)
}

func TestStudentFindMissing(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewStudentRepository(client, nil)

	_, err := repo.Find(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestStudentUpdate(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewStudentRepository(client, nil)
	ctx := context.Background()

	student := newStudent(111, strPtr("alice"), "Mon 10:00")
	require.NoError(t, repo.Create(ctx, student))

	schedule := "Wed 16:00"
	homework := "exercise 5"
	require.NoError(t, repo.Update(ctx, 111, models.StudentUpdate{Schedule: &schedule, Homework: &homework}))

	got, err := repo.Find(ctx, 111)
	require.NoError(t, err)
	assert.Equal(t, "Wed 16:00", got.Schedule)
	assert.Equal(t, "exercise 5", got.Homework)
	assert.Equal(t, "alice", *got.Username)
	assert.Equal(t, student.CreatedAt.Unix(), got.CreatedAt.Unix())
}

func TestStudentUpdateMissing(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewStudentRepository(client, nil)

	schedule := "Wed 16:00"
	err := repo.Update(context.Background(), 999, models.StudentUpdate{Schedule: &schedule})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestStudentDeleteIdempotent(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewStudentRepository(client, nil)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newStudent(111, strPtr("alice"), "Mon 10:00")))
	require.NoError(t, repo.AddLecture(ctx, 111, "lec-1"))

	require.NoError(t, repo.Delete(ctx, 111))

	_, err := repo.Find(ctx, 111)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	// second delete is not an error
	require.NoError(t, repo.Delete(ctx, 111))
}

func TestStudentLectureLinksIdempotent(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewStudentRepository(client, nil)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newStudent(111, strPtr("alice"), "Mon 10:00")))

	require.NoError(t, repo.AddLecture(ctx, 111, "lec-1"))
	require.NoError(t, repo.AddLecture(ctx, 111, "lec-1"))

	got, err := repo.Find(ctx, 111)
	require.NoError(t, err)
	assert.Equal(t, []string{"lec-1"}, got.Lectures)

	require.NoError(t, repo.RemoveLecture(ctx, 111, "lec-1"))
	require.NoError(t, repo.RemoveLecture(ctx, 111, "lec-1"))

	got, err = repo.Find(ctx, 111)
	require.NoError(t, err)
	assert.Empty(t, got.Lectures)
}

func TestStudentLectureLinksRequireStudent(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewStudentRepository(client, nil)
	ctx := context.Background()

	err := repo.AddLecture(ctx, 999, "lec-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	err = repo.RemoveLecture(ctx, 999, "lec-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestStudentFindAllSkipsLectureSets(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewStudentRepository(client, nil)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newStudent(2, strPtr("bob"), "Tue")))
	require.NoError(t, repo.Create(ctx, newStudent(1, strPtr("alice"), "Mon")))
	require.NoError(t, repo.AddLecture(ctx, 1, "lec-1"))

	students, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, int64(1), students[0].UserID)
	assert.Equal(t, int64(2), students[1].UserID)
	assert.Equal(t, []string{"lec-1"}, students[0].Lectures)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStudentStoreUnavailable(t *testing.T) {
	mr, client := newTestClient(t)
	repo := NewStudentRepository(client, nil)
	ctx := context.Background()

	mr.Close()

	done := make(chan error, 1)
	go func() {
		_, err := repo.Find(ctx, 111)
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, appErrors.Is(err, appErrors.ErrStoreUnavailable))
	case <-time.After(10 * time.Second):
		t.Fatal("operation hung on an unreachable store")
	}
}

func TestStudentMalformedRecord(t *testing.T) {
	mr, client := newTestClient(t)
	repo := NewStudentRepository(client, nil)

	mr.Set("student:111", "{not json")

	_, err := repo.Find(context.Background(), 111)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDataIntegrity))
}
