// Package fxcache provides the tier-1 cache for the arbitrage analyzer's
// currency resolver, behind an interface so an in-process cache can be
// swapped for a distributed one without touching the caller.
package fxcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache stores exchange rates keyed by "FROM_TO" pairs. Entries are
// write-once for the lifetime of the process: a resolved rate is assumed
// good until the process recycles.
type Cache interface {
	Get(ctx context.Context, from, to string) (float64, bool)
	Set(ctx context.Context, from, to string, rate float64)
}

func key(from, to string) string { return fmt.Sprintf("%s_%s", from, to) }

// InMemory is a sync.Map-backed Cache for single-process deployments.
type InMemory struct {
	rates sync.Map
}

func NewInMemory() *InMemory { return &InMemory{} }

func (c *InMemory) Get(_ context.Context, from, to string) (float64, bool) {
	v, ok := c.rates.Load(key(from, to))
	if !ok {
		return 0, false
	}
	return v.(float64), true
}

func (c *InMemory) Set(_ context.Context, from, to string, rate float64) {
	c.rates.Store(key(from, to), rate)
}

// Redis is a go-redis-backed Cache for multi-process deployments that need
// to share resolved rates.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (c *Redis) Get(ctx context.Context, from, to string) (float64, bool) {
	val, err := c.client.Get(ctx, key(from, to)).Float64()
	if err != nil {
		return 0, false
	}
	return val, true
}

func (c *Redis) Set(ctx context.Context, from, to string, rate float64) {
	c.client.Set(ctx, key(from, to), rate, c.ttl)
}
