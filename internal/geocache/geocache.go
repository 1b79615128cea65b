// Package geocache memoizes the geometry lookups of the trip expander
// (path_length_between per stop pair, polyline length per loop variant).
// The expander computes each of these once per variant in a run; keys
// name the route, variant and segment, so a Redis-backed cache lets a
// later run reuse them. The shape mirrors internal/cache/redis.go's
// Get/Set-with-TTL pattern in the teacher, backed by Redis when
// configured and by an in-process map otherwise; the in-process map
// lives for one run only.
package geocache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache memoizes a float64-valued computation keyed by a string.
type Cache interface {
	GetOrCompute(key string, compute func() float64) float64
	Close()
}

// New returns a Redis-backed cache when addr is non-empty, otherwise an
// in-process cache. Redis connection failures degrade to the in-process
// cache rather than failing the run — this is a latency optimization,
// never required for correctness.
func New(addr string) Cache {
	if addr == "" {
		return newMemCache()
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return newMemCache()
	}
	return &redisCache{client: client, ttl: 24 * time.Hour}
}

type memCache struct {
	values sync.Map // string -> float64
}

func newMemCache() *memCache {
	return &memCache{}
}

func (c *memCache) GetOrCompute(key string, compute func() float64) float64 {
	if v, ok := c.values.Load(key); ok {
		return v.(float64)
	}
	v := compute()
	c.values.Store(key, v)
	return v
}

func (c *memCache) Close() {}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (c *redisCache) GetOrCompute(key string, compute func() float64) float64 {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	fullKey := fmt.Sprintf("geo:%s", key)
	if data, err := c.client.Get(ctx, fullKey).Bytes(); err == nil {
		var v float64
		if json.Unmarshal(data, &v) == nil {
			return v
		}
	}

	v := compute()
	if data, err := json.Marshal(v); err == nil {
		c.client.Set(ctx, fullKey, data, c.ttl)
	}
	return v
}

func (c *redisCache) Close() {
	c.client.Close()
}
