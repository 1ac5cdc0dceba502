// Package tiered layers the in-process cache over a shared remote cache.
package tiered

import (
	"context"
	"log/slog"
	"time"

	"github.com/Strob0t/TaskScheduler/internal/port/cache"
)

// Cache reads L1 first and falls back to L2, backfilling L1 on an L2 hit.
// Writes go to both. L2 failures are logged and never fail the call, so an
// outage of the shared cache degrades to per-instance caching.
type Cache struct {
	l1       cache.Cache
	l2       cache.Cache
	l1Expire time.Duration
}

var _ cache.Cache = (*Cache)(nil)

// New creates a tiered cache. l1Expire is the lifetime of L1 entries
// backfilled from L2.
func New(l1, l2 cache.Cache, l1Expire time.Duration) *Cache {
	return &Cache{l1: l1, l2: l2, l1Expire: l1Expire}
}

// Get checks L1, then L2.
func (c *Cache) Get(ctx context.Context, key string) (data []byte, ok bool, err error) {
	if val, found, err := c.l1.Get(ctx, key); err != nil {
		return nil, false, err
	} else if found {
		return val, true, nil
	}

	val, found, err := c.l2.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "tiered cache: l2 get failed", "error", err)
		return nil, false, nil
	}
	if !found {
		return nil, false, nil
	}
	if err := c.l1.Set(ctx, key, val, c.l1Expire); err != nil {
		slog.WarnContext(ctx, "tiered cache: l1 backfill failed", "error", err)
	}
	return val, true, nil
}

// Set writes to L1, then L2.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.l1.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	if err := c.l2.Set(ctx, key, value, ttl); err != nil {
		slog.WarnContext(ctx, "tiered cache: l2 set failed", "error", err)
	}
	return nil
}

// Delete removes from both levels.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.l1.Delete(ctx, key); err != nil {
		return err
	}
	if err := c.l2.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "tiered cache: l2 delete failed", "error", err)
	}
	return nil
}
