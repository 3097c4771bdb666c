package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil when redis is unreachable; callers treat a nil
// client as "no cache, no rate limiting".
func ConnectRedis(ctx context.Context, url string) *redis.Client {
	opts, err := redis.ParseURL(url)
	if err != nil {
		slog.Warn("⚠️  Invalid REDIS_URL, running without cache", "error", err)
		return nil
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("⚠️  Redis not available, running without cache", "error", err)
		_ = client.Close()
		return nil
	}

	slog.Info("✅ Redis connected successfully")
	return client
}
