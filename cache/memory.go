package cache

import "sync"

// InMemoryCache is a thread-safe in-memory translation memory. Entries live
// as long as the process.
type InMemoryCache struct {
	cache map[string]string
	mu    sync.RWMutex
}

// NewInMemoryCache creates an empty in-memory cache.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		cache: make(map[string]string),
	}
}

// Get retrieves a value from the cache.
func (c *InMemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.cache[key]
	return value, ok
}

// Set stores a value in the cache.
func (c *InMemoryCache) Set(key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = value
	return nil
}

// Close is a no-op.
func (c *InMemoryCache) Close() error {
	return nil
}

// Len returns the number of entries in the cache.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Clear removes all entries from the cache.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]string)
}

// Entries returns a copy of all entries.
func (c *InMemoryCache) Entries() (map[string]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]string, len(c.cache))
	for key, value := range c.cache {
		result[key] = value
	}
	return result, nil
}
