package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"github.com/ndavydov/auth-sessions/internal/config"
	"go.uber.org/zap"
)

type Cache struct {
	cli *redis.Client
}

func New(conf config.RedisConfig) *Cache {
	cli := redis.NewClient(
		&redis.Options{
			Addr:     conf.Addr,
			Password: conf.Password,
		},
	)

	if err := cli.Ping(context.Background()).Err(); err != nil {
		zap.L().Fatal("failed to connect to redis", zap.Error(err))
	}

	return &Cache{cli: cli}
}

func (c *Cache) Close() error {
	return c.cli.Close()
}

func (c *Cache) GetToStruct(ctx context.Context, key string, dest any) error {
	val, err := c.cli.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(val, dest)
}

func (c *Cache) Set(ctx context.Context, t time.Duration, key string, val any) {
	if err := c.cli.Set(ctx, key, val, t).Err(); err != nil {
		zap.L().Debug("failed to set cache", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) Delete(ctx context.Context, key string) {
	if err := c.cli.Del(ctx, key).Err(); err != nil {
		zap.L().Debug("failed to delete cache", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) InvalidateKeysByPattern(ctx context.Context, pattern string) {
	iter := c.cli.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.cli.Del(ctx, iter.Val()).Err(); err != nil {
			zap.L().Debug("failed to delete cache", zap.String("key", iter.Val()), zap.Error(err))
		}
	}

	if err := iter.Err(); err != nil {
		zap.L().Debug("failed to scan cache keys", zap.String("pattern", pattern), zap.Error(err))
	}
}

// Allow is a fixed-window counter used by the rate-limit middleware.
// The first hit in a window sets the expiry; counting errors fail open so
// a redis outage does not lock users out.
func (c *Cache) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	count, err := c.cli.Incr(ctx, key).Result()
	if err != nil {
		zap.L().Warn("rate limit counter failed", zap.String("key", key), zap.Error(err))
		return true
	}

	if count == 1 {
		if err = c.cli.Expire(ctx, key, window).Err(); err != nil {
			zap.L().Debug("failed to expire rate key", zap.String("key", key), zap.Error(err))
		}
	}

	return count <= int64(limit)
}
