package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PingTimeout bounds the liveness probe so front ends fail fast instead of
// hanging on an unreachable store.
const PingTimeout = 5 * time.Second

// AdminRepository covers the observational and operational surface of the
// store: liveness, statistics and the explicit full wipe.
type AdminRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewAdminRepository constructs an AdminRepository.
func NewAdminRepository(client *redis.Client, logger *zap.Logger) *AdminRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminRepository{client: client, logger: logger}
}

// Ping reports whether the store is reachable within PingTimeout.
func (r *AdminRepository) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	return r.client.Ping(ctx).Err() == nil
}

// TotalKeys returns the size of the whole keyspace.
func (r *AdminRepository) TotalKeys(ctx context.Context) (int64, error) {
	size, err := r.client.DBSize(ctx).Result()
	if err != nil {
		return 0, wrapStore(err, "keyspace size")
	}
	return size, nil
}

// FlushAll irreversibly wipes the whole database. Only the operational
// cleanup path calls this, behind an explicit confirmation.
func (r *AdminRepository) FlushAll(ctx context.Context) error {
	if err := r.client.FlushDB(ctx).Err(); err != nil {
		return wrapStore(err, "flush database")
	}
	r.logger.Warn("store flushed")
	return nil
}
