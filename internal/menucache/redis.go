package menucache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"juicebar-system/internal/metrics"
	"juicebar-system/internal/services/menu/dto"
)

const (
	MENU_SNAPSHOT_CACHE_KEY = "menu:snapshot"
	MENU_VERSION_CACHE_KEY  = "menu:cache-version"
)

// RedisCache keeps the snapshot in Redis with the TTL enforced by key expiry.
// It does not make several gateway processes coherent with each other.
type RedisCache struct {
	redis *redis.Client
	ttl   time.Duration
	log   *logrus.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, log *logrus.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{redis: client, ttl: ttl, log: log}
}

// Get treats an unreadable payload, or one built under an older version than
// menu:cache-version, as a miss so the caller rebuilds.
func (c *RedisCache) Get(ctx context.Context) (*dto.MenuSnapshot, error) {
	vals, err := c.redis.MGet(ctx, MENU_SNAPSHOT_CACHE_KEY, MENU_VERSION_CACHE_KEY).Result()
	if err != nil {
		metrics.MenuCacheRequests.WithLabelValues("miss").Inc()
		return nil, fmt.Errorf("redis mget %s: %w", MENU_SNAPSHOT_CACHE_KEY, err)
	}
	raw, ok := vals[0].(string)
	if !ok {
		metrics.MenuCacheRequests.WithLabelValues("miss").Inc()
		return nil, nil
	}

	var snap dto.MenuSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		c.log.WithError(err).Warn("discarding undecodable menu snapshot")
		metrics.MenuCacheRequests.WithLabelValues("miss").Inc()
		return nil, nil
	}
	if current, ok := vals[1].(string); ok {
		if v, err := strconv.ParseInt(current, 10, 64); err == nil && snap.Version < v {
			metrics.MenuCacheRequests.WithLabelValues("miss").Inc()
			return nil, nil
		}
	}
	metrics.MenuCacheRequests.WithLabelValues("hit").Inc()
	return &snap, nil
}

func (c *RedisCache) Set(ctx context.Context, snapshot *dto.MenuSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal menu snapshot: %w", err)
	}
	if err := c.redis.Set(ctx, MENU_SNAPSHOT_CACHE_KEY, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", MENU_SNAPSHOT_CACHE_KEY, err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.redis.Del(ctx, MENU_SNAPSHOT_CACHE_KEY).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", MENU_SNAPSHOT_CACHE_KEY, err)
	}
	metrics.MenuCacheInvalidations.Inc()
	return nil
}

func (c *RedisCache) Version(ctx context.Context) (int64, error) {
	v, err := c.redis.Get(ctx, MENU_VERSION_CACHE_KEY).Int64()
	if err == redis.Nil {
		return c.redis.Incr(ctx, MENU_VERSION_CACHE_KEY).Result()
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", MENU_VERSION_CACHE_KEY, err)
	}
	return v, nil
}

func (c *RedisCache) BumpVersion(ctx context.Context) (int64, error) {
	v, err := c.redis.Incr(ctx, MENU_VERSION_CACHE_KEY).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", MENU_VERSION_CACHE_KEY, err)
	}
	return v, nil
}
