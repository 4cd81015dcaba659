package connection

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"user-auth/db"
)

// InitRedis connects to the profile cache and verifies it with PING.
func InitRedis(ctx context.Context, addr, password string, attempts int, backoff time.Duration, log *zap.Logger) (*redis.Client, error) {
	log.Info("Connecting to Redis", zap.String("addr", addr))

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	err := db.Retry(ctx, attempts, backoff, log, "redis", func() error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	log.Info("Successfully connected to Redis")
	return client, nil
}
