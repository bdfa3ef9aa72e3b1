package cache

import (
	"context"
	"errors"
	"time"
)

// Cache is the read-through cache used by the task service.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// MultiLevelCache fronts an optional Redis L2 with a short-lived in-process L1.
// L1 entries on other instances may outlive an invalidation by up to l1TTL.
type MultiLevelCache struct {
	l1      *MemoryCache
	l2      *RedisCache
	l1TTL   time.Duration
	metrics *CacheMetrics
}

func NewMultiLevelCache(redisCache *RedisCache, l1TTL time.Duration) *MultiLevelCache {
	if l1TTL <= 0 {
		l1TTL = 30 * time.Second
	}
	return &MultiLevelCache{
		l1:      NewMemoryCache(),
		l2:      redisCache,
		l1TTL:   l1TTL,
		metrics: NewCacheMetrics(),
	}
}

func (c *MultiLevelCache) l1Expiry(ttl time.Duration) time.Duration {
	if ttl < c.l1TTL {
		return ttl
	}
	return c.l1TTL
}

func (c *MultiLevelCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.metrics.RecordSet()
	if err := c.l1.Set(ctx, key, value, c.l1Expiry(ttl)); err != nil {
		c.metrics.RecordError()
		return err
	}

	if c.l2 != nil {
		if err := c.l2.Set(ctx, key, value, ttl); err != nil {
			c.metrics.RecordError()
			return err
		}
	}
	return nil
}

func (c *MultiLevelCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := c.l1.Get(ctx, key, dest); err == nil {
		c.metrics.RecordHit()
		return nil
	}

	if c.l2 == nil {
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	err := c.l2.Get(ctx, key, dest)
	switch {
	case err == nil:
		c.metrics.RecordHit()
		_ = c.l1.Set(ctx, key, dest, c.l1TTL)
		return nil
	case errors.Is(err, ErrCacheMiss):
		c.metrics.RecordMiss()
	default:
		c.metrics.RecordError()
	}
	return err
}

func (c *MultiLevelCache) Delete(ctx context.Context, keys ...string) error {
	c.metrics.RecordDelete()
	_ = c.l1.Delete(ctx, keys...)

	if c.l2 != nil {
		if err := c.l2.Delete(ctx, keys...); err != nil {
			c.metrics.RecordError()
			return err
		}
	}
	return nil
}

// Run purges expired L1 entries every l1TTL until ctx is cancelled.
func (c *MultiLevelCache) Run(ctx context.Context) {
	ticker := time.NewTicker(c.l1TTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.l1.Purge()
		}
	}
}

func (c *MultiLevelCache) Health(ctx context.Context) error {
	if c.l2 != nil {
		return c.l2.Health(ctx)
	}
	return nil
}

func (c *MultiLevelCache) Metrics() MetricsSnapshot {
	return c.metrics.Snapshot()
}

func (c *MultiLevelCache) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"l1":      c.l1.Stats(),
		"metrics": c.metrics.Snapshot(),
	}
	if c.l2 != nil {
		stats["l2"] = c.l2.Stats()
	}
	return stats
}

func (c *MultiLevelCache) Close() error {
	if c.l2 != nil {
		return c.l2.Close()
	}
	return nil
}
