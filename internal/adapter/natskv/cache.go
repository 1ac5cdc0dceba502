// Package natskv implements the cache port on a NATS JetStream key-value
// bucket, shared by every server instance connected to the same NATS.
package natskv

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/Strob0t/TaskScheduler/internal/port/cache"
)

// Cache stores values in a JetStream KV bucket. Expiry is the bucket TTL;
// per-entry ttl arguments are ignored.
type Cache struct {
	kv jetstream.KeyValue
}

var _ cache.Cache = (*Cache)(nil)

// New wraps an existing KV bucket.
func New(kv jetstream.KeyValue) *Cache {
	return &Cache{kv: kv}
}

// Open creates or updates the KV bucket and wraps it.
func Open(ctx context.Context, js jetstream.JetStream, bucket string, ttl time.Duration) (*Cache, error) {
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: bucket,
		TTL:    ttl,
	})
	if err != nil {
		return nil, fmt.Errorf("nats kv bucket %s: %w", bucket, err)
	}
	return New(kv), nil
}

// kvKey maps an arbitrary cache key onto the KV key alphabet.
func kvKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

// Get retrieves a value.
func (c *Cache) Get(ctx context.Context, key string) (data []byte, ok bool, err error) {
	entry, err := c.kv.Get(ctx, kvKey(key))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("nats kv get: %w", err)
	}
	return entry.Value(), true, nil
}

// Set stores a value.
func (c *Cache) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	if _, err := c.kv.Put(ctx, kvKey(key), value); err != nil {
		return fmt.Errorf("nats kv put: %w", err)
	}
	return nil
}

// Delete removes a value. Missing keys are not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(ctx, kvKey(key))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("nats kv delete: %w", err)
	}
	return nil
}
