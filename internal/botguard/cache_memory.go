package botguard

import (
	"sync"
	"time"
)

// MemoryCache keeps outputs in process memory. Expired entries are misses.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]Output
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]Output)}
}

func (c *MemoryCache) Get(key string) (Output, bool) {
	c.mu.RLock()
	v, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return Output{}, false
	}
	if v.Expired(time.Now()) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return Output{}, false
	}
	return v, true
}

func (c *MemoryCache) Set(key string, value Output) {
	c.mu.Lock()
	c.data[key] = value
	c.mu.Unlock()
}
