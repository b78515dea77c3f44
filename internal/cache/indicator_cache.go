// Package cache implements an optional Redis-backed memoization layer
// for precomputed indicator arrays, keyed by a strategy's
// fingerprint.ConfigHash plus symbol. A cache miss or a disabled cache
// is never an error for the caller — indicators.Precompute is cheap
// enough to simply recompute.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ridopark/trendlab/indicators"
)

// IndicatorCache memoizes one symbol's indicators.Values under a
// config-hash-scoped key.
type IndicatorCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIndicatorCache returns a cache backed by the Redis instance at
// addr. ttl of zero means entries never expire.
func NewIndicatorCache(addr string, ttl time.Duration) *IndicatorCache {
	return &IndicatorCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

func key(configHash, symbol string) string {
	return fmt.Sprintf("indicators:%s:%s", configHash, symbol)
}

// Get returns the memoized values for configHash/symbol, and whether
// they were found. A Redis error is treated as a miss — callers should
// fall back to recomputation rather than fail the run.
func (c *IndicatorCache) Get(ctx context.Context, configHash, symbol string) (indicators.Values, bool) {
	raw, err := c.client.Get(ctx, key(configHash, symbol)).Bytes()
	if err != nil {
		return nil, false
	}
	var values indicators.Values
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, false
	}
	return values, true
}

// Set memoizes values under configHash/symbol. Errors are returned for
// observability but are non-fatal to the caller.
func (c *IndicatorCache) Set(ctx context.Context, configHash, symbol string, values indicators.Values) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal indicator values: %w", err)
	}
	return c.client.Set(ctx, key(configHash, symbol), raw, c.ttl).Err()
}

// Close releases the underlying Redis connection pool.
func (c *IndicatorCache) Close() error {
	return c.client.Close()
}
