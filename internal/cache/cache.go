// Package cache provides a small TTL cache behind an interface so the
// in-memory implementation can be swapped for a shared store without
// touching callers.
package cache

import (
	"sync"
	"time"
)

type Cache interface {
	// Get returns the value for key, or false when the key is absent or
	// its entry has expired.
	Get(key string) (string, bool)
	// Set stores value under key for the given TTL. A zero or negative
	// TTL stores nothing.
	Set(key, value string, ttl time.Duration)
	Delete(key string)
}

type entry struct {
	value     string
	expiresAt time.Time
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemory() Cache {
	return &memoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (c *memoryCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return e.value, true
}

func (c *memoryCache) Set(key, value string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
}

func (c *memoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
