package store

import (
	"context"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/gt7-dashboard/internal/metrics"
)

// listEntry and fetchEntry pair a memoized result with the time it was
// obtained; expiry is judged against the injected clock so tests can fake it.
type listEntry struct {
	keys      []string
	fetchedAt time.Time
}

type fetchEntry struct {
	data      []byte
	fetchedAt time.Time
}

// CachedStore memoizes List and Fetch results keyed by their arguments, with
// a TTL that strictly bounds staleness. Two calls with identical arguments
// inside the TTL return the same bytes without a second remote call.
type CachedStore struct {
	inner Store
	ttl   time.Duration
	now   func() time.Time

	cache     *cache.Cache
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewCachedStore wraps inner with a TTL memoization layer.
func NewCachedStore(inner Store, ttl time.Duration) *CachedStore {
	return &CachedStore{
		inner: inner,
		ttl:   ttl,
		now:   time.Now,
		// go-cache's own expiry is a backstop at 2x TTL; staleness is
		// decided by the injected clock so it stays testable.
		cache: cache.New(2*ttl, 2*ttl),
	}
}

// WithClock replaces the cache's clock, for tests.
func (c *CachedStore) WithClock(now func() time.Time) *CachedStore {
	c.now = now
	return c
}

// Name returns the wrapped store's name.
func (c *CachedStore) Name() string {
	return c.inner.Name()
}

// List returns the memoized listing for prefix when fresh, otherwise lists
// from the inner store and memoizes the result.
func (c *CachedStore) List(ctx context.Context, prefix string) ([]string, error) {
	key := "list:" + prefix

	c.mu.Lock()
	if v, found := c.cache.Get(key); found {
		if entry, ok := v.(listEntry); ok && c.fresh(entry.fetchedAt) {
			c.hitCount++
			c.updateMetrics()
			c.mu.Unlock()
			return entry.keys, nil
		}
		c.cache.Delete(key)
	}
	c.missCount++
	c.updateMetrics()
	c.mu.Unlock()

	keys, err := c.inner.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache.Set(key, listEntry{keys: keys, fetchedAt: c.now()}, cache.DefaultExpiration)
	c.mu.Unlock()

	return keys, nil
}

// Fetch returns the memoized payload for key when fresh, otherwise fetches
// from the inner store and memoizes the result. Errors are not memoized: a
// missing file is re-checked on the next request.
func (c *CachedStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	cacheKey := "fetch:" + key

	c.mu.Lock()
	if v, found := c.cache.Get(cacheKey); found {
		if entry, ok := v.(fetchEntry); ok && c.fresh(entry.fetchedAt) {
			c.hitCount++
			c.updateMetrics()
			c.mu.Unlock()
			return entry.data, nil
		}
		c.cache.Delete(cacheKey)
	}
	c.missCount++
	c.updateMetrics()
	c.mu.Unlock()

	data, err := c.inner.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache.Set(cacheKey, fetchEntry{data: data, fetchedAt: c.now()}, cache.DefaultExpiration)
	c.mu.Unlock()

	return data, nil
}

// Flush drops all memoized entries.
func (c *CachedStore) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Flush()
	c.hitCount = 0
	c.missCount = 0
}

// Stats returns cache statistics
func (c *CachedStore) Stats() (hits, misses uint64, ratio float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats()
}

func (c *CachedStore) stats() (hits, misses uint64, ratio float64) {
	hits = c.hitCount
	misses = c.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of memoized entries.
func (c *CachedStore) ItemCount() int {
	return c.cache.ItemCount()
}

func (c *CachedStore) fresh(fetchedAt time.Time) bool {
	return c.now().Sub(fetchedAt) < c.ttl
}

func (c *CachedStore) updateMetrics() {
	_, _, ratio := c.stats()
	metrics.CacheHitRatio.Set(ratio)
}
