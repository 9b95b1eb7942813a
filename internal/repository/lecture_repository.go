package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chembot/internal/models"
	appErrors "chembot/pkg/errors"
)

// LectureRepository manages the flat lecture catalog and the per-lecture
// file metadata sub-records.
type LectureRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewLectureRepository constructs a LectureRepository.
func NewLectureRepository(client *redis.Client, logger *zap.Logger) *LectureRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LectureRepository{client: client, logger: logger}
}

// Add stores a catalog entry under the given ID.
func (r *LectureRepository) Add(ctx context.Context, lectureID, name string) error {
	if err := r.client.HSet(ctx, catalogKey, lectureID, name).Err(); err != nil {
		return wrapStore(err, "add lecture")
	}
	return nil
}

// Find returns the catalog entry joined with its file metadata when present.
func (r *LectureRepository) Find(ctx context.Context, lectureID string) (*models.Lecture, error) {
	name, err := r.client.HGet(ctx, catalogKey, lectureID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lecture not found")
		}
		return nil, wrapStore(err, "get lecture")
	}

	lecture := &models.Lecture{ID: lectureID, Name: name}

	raw, err := r.client.Get(ctx, lectureFileKey(lectureID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return lecture, nil
		}
		return nil, wrapStore(err, "get lecture file metadata")
	}
	file, err := models.DecodeLectureFile(raw)
	if err != nil {
		return nil, wrapIntegrity(err, "decode lecture file metadata")
	}
	lecture.File = file

	return lecture, nil
}

// FindAll returns the whole catalog ordered by name.
func (r *LectureRepository) FindAll(ctx context.Context) ([]models.Lecture, error) {
	entries, err := r.client.HGetAll(ctx, catalogKey).Result()
	if err != nil {
		return nil, wrapStore(err, "list lectures")
	}

	lectures := make([]models.Lecture, 0, len(entries))
	for id, name := range entries {
		lectures = append(lectures, models.Lecture{ID: id, Name: name})
	}
	sort.Slice(lectures, func(i, j int) bool {
		if lectures[i].Name == lectures[j].Name {
			return lectures[i].ID < lectures[j].ID
		}
		return lectures[i].Name < lectures[j].Name
	})
	return lectures, nil
}

// Rename updates the catalog name. Absent lectures are reported, not
// silently created.
func (r *LectureRepository) Rename(ctx context.Context, lectureID, name string) error {
	exists, err := r.client.HExists(ctx, catalogKey, lectureID).Result()
	if err != nil {
		return wrapStore(err, "check lecture")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrNotFound, "lecture not found")
	}
	if err := r.client.HSet(ctx, catalogKey, lectureID, name).Err(); err != nil {
		return wrapStore(err, "rename lecture")
	}
	return nil
}

// Delete removes the catalog entry and the file metadata sub-record.
// Student references are deliberately left in place; stale references are
// the documented contract.
func (r *LectureRepository) Delete(ctx context.Context, lectureID string) error {
	removed, err := r.client.HDel(ctx, catalogKey, lectureID).Result()
	if err != nil {
		return wrapStore(err, "delete lecture")
	}
	if removed == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "lecture not found")
	}
	if err := r.client.Del(ctx, lectureFileKey(lectureID)).Err(); err != nil {
		return wrapStore(err, "delete lecture file metadata")
	}
	return nil
}

// SetFile attaches file metadata to a lecture.
func (r *LectureRepository) SetFile(ctx context.Context, lectureID string, file *models.LectureFile) error {
	payload, err := models.EncodeLectureFile(file)
	if err != nil {
		return wrapIntegrity(err, "encode lecture file metadata")
	}
	if err := r.client.Set(ctx, lectureFileKey(lectureID), payload, 0).Err(); err != nil {
		return wrapStore(err, "set lecture file metadata")
	}
	return nil
}

// File returns the metadata sub-record for a lecture.
func (r *LectureRepository) File(ctx context.Context, lectureID string) (*models.LectureFile, error) {
	raw, err := r.client.Get(ctx, lectureFileKey(lectureID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lecture file not found")
		}
		return nil, wrapStore(err, "get lecture file metadata")
	}
	file, err := models.DecodeLectureFile(raw)
	if err != nil {
		return nil, wrapIntegrity(err, "decode lecture file metadata")
	}
	return file, nil
}

// Exists reports whether the catalog contains the given ID.
func (r *LectureRepository) Exists(ctx context.Context, lectureID string) (bool, error) {
	exists, err := r.client.HExists(ctx, catalogKey, lectureID).Result()
	if err != nil {
		return false, wrapStore(err, "check lecture")
	}
	return exists, nil
}

// Count returns the catalog size.
func (r *LectureRepository) Count(ctx context.Context) (int, error) {
	count, err := r.client.HLen(ctx, catalogKey).Result()
	if err != nil {
		return 0, wrapStore(err, "count lectures")
	}
	return int(count), nil
}
