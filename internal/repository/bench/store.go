// Package bench persists the per-session count of records added to the bench.
package bench

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/facetdex/internal/db"
)

// store is the consumer interface for bench counters (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Counter counts bench additions per session on top of the KV store (INCRBY + EXPIRE NX).
type Counter struct {
	store  store
	prefix string
	ttl    time.Duration
}

// New creates a bench counter. ttl bounds how long a session's count outlives its last increment.
func New(s store, prefix string, ttl time.Duration) *Counter {
	return &Counter{store: s, prefix: prefix, ttl: ttl}
}

// Incr atomically increments the session's counter and returns the new value.
func (c *Counter) Incr(ctx context.Context, session string) (int64, error) {
	key := c.key(session)
	n, err := c.store.IncrBy(ctx, key, 1)
	if err != nil {
		return 0, fmt.Errorf("bench INCRBY %s: %w", key, err)
	}

	// Set TTL only if the key has no expiry yet (NX, not reset on repeat).
	if err := c.store.Expire(ctx, key, c.ttl, true); err != nil {
		return n, fmt.Errorf("bench EXPIRE %s: %w", key, err)
	}
	return n, nil
}

// Get returns the session's counter. Returns 0 if the key does not exist.
func (c *Counter) Get(ctx context.Context, session string) (int64, error) {
	key := c.key(session)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("bench GET %s: %w", key, err)
	}

	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bench GET %s parse: %w", key, err)
	}
	return val, nil
}

func (c *Counter) key(session string) string {
	return c.prefix + "bench:" + session
}
