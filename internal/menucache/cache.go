// Package menucache stores the public menu snapshot between rebuilds and the
// version counter clients use for cache-busting.
package menucache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"juicebar-system/internal/metrics"
	"juicebar-system/internal/services/menu/dto"
)

const DefaultTTL = 30 * time.Second

// Cache is shared by every request handler. Get returns (nil, nil) on a miss,
// once the stored snapshot is older than the TTL, or when the snapshot was
// built under a version that has since been bumped.
type Cache interface {
	Get(ctx context.Context) (*dto.MenuSnapshot, error)
	Set(ctx context.Context, snapshot *dto.MenuSnapshot) error
	Invalidate(ctx context.Context) error
	Version(ctx context.Context) (int64, error)
	BumpVersion(ctx context.Context) (int64, error)
}

// MemoryCache is the single-process backend. Concurrent misses each rebuild and
// the last Set wins.
type MemoryCache struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.RWMutex
	snapshot *dto.MenuSnapshot
	storedAt time.Time

	version atomic.Int64
}

type Option func(*MemoryCache)

// WithClock replaces time.Now, for tests that need to step past the TTL.
func WithClock(clock func() time.Time) Option {
	return func(c *MemoryCache) { c.clock = clock }
}

func NewMemoryCache(ttl time.Duration, opts ...Option) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &MemoryCache{ttl: ttl, clock: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.version.Store(1)
	return c
}

func (c *MemoryCache) Get(_ context.Context) (*dto.MenuSnapshot, error) {
	c.mu.RLock()
	snap, storedAt := c.snapshot, c.storedAt
	stale := snap != nil && snap.Version < c.version.Load()
	c.mu.RUnlock()

	if snap == nil || stale || c.clock().Sub(storedAt) >= c.ttl {
		metrics.MenuCacheRequests.WithLabelValues("miss").Inc()
		return nil, nil
	}
	metrics.MenuCacheRequests.WithLabelValues("hit").Inc()
	return snap, nil
}

// Set drops snapshots built before the latest BumpVersion.
func (c *MemoryCache) Set(_ context.Context, snapshot *dto.MenuSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if snapshot == nil || snapshot.Version < c.version.Load() {
		return nil
	}
	c.snapshot = snapshot
	c.storedAt = c.clock()
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	c.snapshot = nil
	c.storedAt = time.Time{}
	c.mu.Unlock()
	metrics.MenuCacheInvalidations.Inc()
	return nil
}

func (c *MemoryCache) Version(_ context.Context) (int64, error) {
	return c.version.Load(), nil
}

func (c *MemoryCache) BumpVersion(_ context.Context) (int64, error) {
	return c.version.Add(1), nil
}
