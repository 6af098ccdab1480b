package reader

import "sync"

// readCache memoizes extraction results per (absolute path, mode) key. It is
// an explicit, bounded, instance-owned cache so tests stay isolated and a
// Reader can be shared across workers. Eviction is FIFO; empty results are
// cached too, so a known-bad document is not re-extracted.
type readCache struct {
	mu      sync.Mutex
	max     int
	entries map[string]Content
	order   []string
}

func newReadCache(max int) *readCache {
	if max <= 0 {
		max = 64
	}
	return &readCache{
		max:     max,
		entries: make(map[string]Content, max),
	}
}

func (c *readCache) get(key string) (Content, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *readCache) put(key string, v Content) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		c.entries[key] = v
		return
	}
	if len(c.order) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = v
	c.order = append(c.order, key)
}

func (c *readCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
