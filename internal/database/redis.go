package database

import (
	"context"
	"fmt"
	"time"

	"github.com/MLBB-BOSS/MLSnap/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// InitRedis connects to Redis. A failed ping is logged and the client is still returned,
// callers treat Redis as best-effort.
func InitRedis(ctx context.Context, addr, password string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := client.Ping(pingCtx).Result(); err != nil {
		logger.Warn().Err(err).Msg("Failed to connect to Redis, submission limits will fail open")
	} else {
		logger.Info().Str("addr", addr).Msg("Connected to Redis successfully")
	}
	return client
}

// RedisLimiter caps submissions per user in a fixed window.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

// Allow increments the user's counter and reports whether it is still within the limit.
func (l *RedisLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	key := fmt.Sprintf("submit_limit:%s", userID)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}

	if count == 1 {
		l.client.Expire(ctx, key, l.window)
	}

	return count <= int64(l.limit), nil
}
