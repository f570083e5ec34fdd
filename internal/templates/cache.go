package templates

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/claude/replog/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultCacheKey is the Redis key templates are stored under.
const DefaultCacheKey = "replog:templates"

// RedisCache wraps a Loader and keeps its last result in Redis for ttl.
// Redis failures are logged and fall through to the wrapped loader.
type RedisCache struct {
	client *redis.Client
	next   Loader
	key    string
	ttl    time.Duration
	log    *slog.Logger
}

var _ Loader = (*RedisCache)(nil)

// NewRedisCache creates a cache in front of next.
func NewRedisCache(client *redis.Client, next Loader, ttl time.Duration, log *slog.Logger) *RedisCache {
	return &RedisCache{client: client, next: next, key: DefaultCacheKey, ttl: ttl, log: log}
}

// Load returns the cached templates or loads and caches them.
func (c *RedisCache) Load(ctx context.Context) ([]models.WorkoutTemplate, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	switch {
	case err == nil:
		var tpls []models.WorkoutTemplate
		if err := json.Unmarshal(raw, &tpls); err == nil {
			return tpls, nil
		}
		c.log.Warn("discarding unreadable template cache", "key", c.key)
	case !errors.Is(err, redis.Nil):
		c.log.Warn("template cache unavailable", "error", err)
	}

	tpls, err := c.next.Load(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(tpls)
	if err != nil {
		return tpls, nil
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		c.log.Warn("caching templates failed", "error", err)
	}
	return tpls, nil
}

// Invalidate drops the cached entry.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
