package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rosterd/rosterd/internal/metrics"
)

const (
	ResolvedMembersTTL = 5 * time.Minute
	ScheduleResultTTL  = time.Hour

	resolvedMembersPrefix = "resolved_members:"
	scheduleResultPrefix  = "schedule_result:"
)

// ResolvedMembersPattern matches every cached resolved-members entry.
// Group hierarchy mutations anywhere can change any group's resolution,
// so invalidation is wholesale.
const ResolvedMembersPattern = resolvedMembersPrefix + "*"

func ResolvedMembersKey(groupID uuid.UUID) string {
	return resolvedMembersPrefix + groupID.String()
}

func ScheduleResultKey(jobID uuid.UUID) string {
	return scheduleResultPrefix + jobID.String()
}

// Cache is a JSON read-through cache over Redis. Every operation treats
// Redis errors as misses: the cache is an accelerator, never a source of
// truth, so callers only see data errors, not transport errors.
type Cache struct {
	client *redis.Client
	logger *slog.Logger
}

func New(url string, logger *slog.Logger) (*Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse cache url: %w", err)
	}
	return &Cache{
		client: redis.NewClient(opts),
		logger: logger.With("component", "cache"),
	}, nil
}

// Get fetches key into dest. It returns true only on a hit that
// unmarshals cleanly.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		c.logger.Warn("cache entry corrupt, dropping", "key", key, "error", err)
		c.Invalidate(ctx, key)
		metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()
		return false
	}
	metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
	return true
}

func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

func (c *Cache) Invalidate(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("cache invalidate failed", "key", key, "error", err)
	}
}

// InvalidatePattern deletes every key matching pattern via SCAN, which
// keeps Redis responsive on large keyspaces where KEYS would not.
func (c *Cache) InvalidatePattern(ctx context.Context, pattern string) {
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("cache scan failed", "pattern", pattern, "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache invalidate failed", "pattern", pattern, "error", err)
	}
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
