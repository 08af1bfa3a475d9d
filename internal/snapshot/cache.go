package snapshot

import (
	"sync"
	"time"
)

// Cache holds at most one snapshot with a TTL. A zero TTL disables
// expiry so cached snapshots live until Invalidate.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	snap    *Snapshot
	expires time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl}
}

func (c *Cache) Get() (*Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap == nil {
		return nil, false
	}
	if c.ttl > 0 && time.Now().After(c.expires) {
		c.snap = nil
		return nil, false
	}
	return c.snap, true
}

func (c *Cache) Set(s *Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = s
	c.expires = time.Now().Add(c.ttl)
}

func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = nil
}
