package di

import (
	"context"
	"sync"
	"time"
)

// CacheRecorder counts cache hits and misses
type CacheRecorder interface {
	IncrementCounter(name string)
}

// tombstoneTTL bounds how long a deleted key is remembered individually.
// Older deletes are folded into floor.
const tombstoneTTL = 10 * time.Minute

// InMemoryCache provides a simple in-memory TTL cache. Every Delete
// advances seq; a SetIfUnchanged whose version predates a delete of its
// key is dropped.
type InMemoryCache struct {
	mu         sync.RWMutex
	items      map[string]cacheItem
	seq        uint64
	tombstones map[string]tombstone
	floor      uint64
	recorder   CacheRecorder
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

type cacheItem struct {
	value     interface{}
	expiresAt time.Time
}

type tombstone struct {
	seq       uint64
	deletedAt time.Time
}

// NewInMemoryCache creates a cache and starts its expiry sweeper. Stop ends
// the sweeper. recorder may be nil.
func NewInMemoryCache(cleanupInterval time.Duration, recorder CacheRecorder) *InMemoryCache {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	cache := &InMemoryCache{
		items:      make(map[string]cacheItem),
		tombstones: make(map[string]tombstone),
		recorder:   recorder,
		now:        time.Now,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}

	go cache.cleanupExpired(cleanupInterval)

	return cache
}

// Get retrieves a value from cache
func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists || c.now().After(item.expiresAt) {
		c.record("cache_misses")
		return nil, false
	}

	c.record("cache_hits")
	return item.value, true
}

// Version returns the current invalidation sequence
func (c *InMemoryCache) Version(ctx context.Context, key string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.seq
}

// SetIfUnchanged stores value for ttl seconds unless key was deleted after
// version was taken. A non-positive TTL stores nothing.
func (c *InMemoryCache) SetIfUnchanged(ctx context.Context, key string, value interface{}, ttl int, version uint64) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.floor > version {
		return false, nil
	}
	if t, ok := c.tombstones[key]; ok && t.seq > version {
		return false, nil
	}

	c.items[key] = cacheItem{
		value:     value,
		expiresAt: c.now().Add(time.Duration(ttl) * time.Second),
	}
	return true, nil
}

// Delete removes a value from cache
func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	delete(c.items, key)
	c.tombstones[key] = tombstone{seq: c.seq, deletedAt: c.now()}
	return nil
}

// Stop ends the sweeper goroutine and waits for it to exit
func (c *InMemoryCache) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}

func (c *InMemoryCache) record(name string) {
	if c.recorder != nil {
		c.recorder.IncrementCounter(name)
	}
}

func (c *InMemoryCache) cleanupExpired(interval time.Duration) {
	defer close(c.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *InMemoryCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
	for key, t := range c.tombstones {
		if now.Sub(t.deletedAt) > tombstoneTTL {
			if t.seq > c.floor {
				c.floor = t.seq
			}
			delete(c.tombstones, key)
		}
	}
}
