package repository

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chembot/internal/models"
	appErrors "chembot/pkg/errors"
)

// StudentRepository manages persistence for student records.
//
// The JSON value under student:<id> never carries the lecture set; lecture
// assignments live in student:<id>:lectures and are mutated per element
// with SADD/SREM, so concurrent membership changes cannot lose each other.
type StudentRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(client *redis.Client, logger *zap.Logger) *StudentRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentRepository{client: client, logger: logger}
}

// Create stores a new student record. Duplicate user IDs are rejected; the
// check and the write are a single SETNX round trip.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	record := *student
	record.Lectures = nil

	payload, err := models.EncodeStudent(&record)
	if err != nil {
		return wrapIntegrity(err, "encode student record")
	}

	ok, err := r.client.SetNX(ctx, studentKey(student.UserID), payload, 0).Result()
	if err != nil {
		return wrapStore(err, "create student")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrAlreadyExists, "student already exists")
	}
	return nil
}

// Find returns the student record with its lecture assignments.
func (r *StudentRepository) Find(ctx context.Context, userID int64) (*models.Student, error) {
	raw, err := r.client.Get(ctx, studentKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, wrapStore(err, "get student")
	}

	student, err := models.DecodeStudent(raw)
	if err != nil {
		return nil, wrapIntegrity(err, "decode student record")
	}

	lectures, err := r.client.SMembers(ctx, studentLecturesKey(userID)).Result()
	if err != nil {
		return nil, wrapStore(err, "get student lectures")
	}
	sort.Strings(lectures)
	student.Lectures = lectures

	return student, nil
}

// FindAll returns every student record, ordered by user ID. Cost is linear
// in the number of students; the caller base is tens of records.
func (r *StudentRepository) FindAll(ctx context.Context) ([]models.Student, error) {
	students := make([]models.Student, 0)

	iter := r.client.Scan(ctx, 0, studentScanMatch, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if strings.HasSuffix(key, lectureSetSuffix) {
			continue
		}
		userID, err := models.ParseUserID(strings.TrimPrefix(key, studentKeyPrefix))
		if err != nil {
			r.logger.Warn("skipping malformed student key", zap.String("key", key))
			continue
		}
		student, err := r.Find(ctx, userID)
		if err != nil {
			// A concurrent delete between scan and get is not an error.
			if appErrors.Is(err, appErrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		students = append(students, *student)
	}
	if err := iter.Err(); err != nil {
		return nil, wrapStore(err, "scan students")
	}

	sort.Slice(students, func(i, j int) bool { return students[i].UserID < students[j].UserID })
	return students, nil
}

// Update applies a partial update to the mutable fields. The lecture set is
// untouched; CreatedAt and UserID are immutable.
func (r *StudentRepository) Update(ctx context.Context, userID int64, update models.StudentUpdate) error {
	raw, err := r.client.Get(ctx, studentKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return wrapStore(err, "get student")
	}

	student, err := models.DecodeStudent(raw)
	if err != nil {
		return wrapIntegrity(err, "decode student record")
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
	student.Lectures = nil

	payload, err := models.EncodeStudent(student)
	if err != nil {
		return wrapIntegrity(err, "encode student record")
	}
	if err := r.client.Set(ctx, studentKey(userID), payload, 0).Err(); err != nil {
		return wrapStore(err, "update student")
	}
	return nil
}

// Delete removes the record and its lecture set. Deleting an absent
// student is not an error.
func (r *StudentRepository) Delete(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, studentKey(userID), studentLecturesKey(userID)).Err(); err != nil {
		return wrapStore(err, "delete student")
	}
	return nil
}

// AddLecture assigns a lecture to the student. Adding an already-present
// ID is a no-op.
func (r *StudentRepository) AddLecture(ctx context.Context, userID int64, lectureID string) error {
	if err := r.requireStudent(ctx, userID); err != nil {
		return err
	}
	if err := r.client.SAdd(ctx, studentLecturesKey(userID), lectureID).Err(); err != nil {
		return wrapStore(err, "assign lecture")
	}
	return nil
}

// RemoveLecture unassigns a lecture. Removing an absent ID is a no-op.
func (r *StudentRepository) RemoveLecture(ctx context.Context, userID int64, lectureID string) error {
	if err := r.requireStudent(ctx, userID); err != nil {
		return err
	}
	if err := r.client.SRem(ctx, studentLecturesKey(userID), lectureID).Err(); err != nil {
		return wrapStore(err, "unassign lecture")
	}
	return nil
}

// Count returns the number of student records.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	count := 0
	iter := r.client.Scan(ctx, 0, studentScanMatch, 0).Iterator()
	for iter.Next(ctx) {
		if strings.HasSuffix(iter.Val(), lectureSetSuffix) {
			continue
		}
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, wrapStore(err, "count students")
	}
	return count, nil
}

func (r *StudentRepository) requireStudent(ctx context.Context, userID int64) error {
	exists, err := r.client.Exists(ctx, studentKey(userID)).Result()
	if err != nil {
		return wrapStore(err, "check student")
	}
	if exists == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return nil
}
