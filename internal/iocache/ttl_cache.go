package iocache

import (
	"time"

	"github.com/huangsam/pulse/internal/contract"
)

// currentCacheVersion defines the version of the cached value encoding.
const currentCacheVersion = 1

// TTLCache adapts a CacheStore into a read-through cache whose entries
// expire ttl after they were written.
type TTLCache struct {
	store contract.CacheStore
	ttl   time.Duration
	clock contract.Clock
}

var _ contract.TTLCache = &TTLCache{} // Compile-time check

// NewTTLCache wraps store. A non-positive ttl uses contract.DefaultTrendingTTL.
func NewTTLCache(store contract.CacheStore, ttl time.Duration, clock contract.Clock) *TTLCache {
	if ttl <= 0 {
		ttl = contract.DefaultTrendingTTL
	}
	if clock == nil {
		clock = contract.SystemClock{}
	}
	return &TTLCache{store: store, ttl: ttl, clock: clock}
}

// Get returns the cached value when it exists, has the current version and is fresh.
func (c *TTLCache) Get(key string) ([]byte, bool) {
	if c.store == nil {
		return nil, false
	}
	data, version, ts, err := c.store.Get(key)
	if err != nil {
		return nil, false // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion {
		return nil, false
	}
	if c.clock.Now().Sub(time.Unix(ts, 0)) >= c.ttl {
		return nil, false
	}
	return data, true
}

// Set stores value stamped with the current time.
func (c *TTLCache) Set(key string, value []byte) error {
	if c.store == nil {
		return nil
	}
	return c.store.Set(key, value, currentCacheVersion, c.clock.Now().Unix())
}

// Invalidate drops every entry of the underlying store.
func (c *TTLCache) Invalidate() error {
	if c.store == nil {
		return nil
	}
	return c.store.Clear()
}
