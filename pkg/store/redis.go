package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chembot/pkg/config"
)

// DialTimeout bounds the initial reachability check.
const DialTimeout = 5 * time.Second

// NewRedis returns a configured Redis client, verified reachable.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
