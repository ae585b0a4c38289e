package metrics

import (
	"sync"
	"time"

	"github.com/rmirandamx/agentspend/internal/model"
)

// SnapshotCache holds one computed snapshot with an explicit expiry.
// Callers own the cache and decide when to bypass it; there is no package
// level singleton.
type SnapshotCache struct {
	mu       sync.Mutex
	value    model.MetricsSnapshot
	storedAt time.Time
	ttl      time.Duration
}

// NewSnapshotCache returns an empty cache with the given TTL.
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{ttl: ttl}
}

// Get returns the cached snapshot if it is still within its TTL.
func (c *SnapshotCache) Get(now time.Time) (model.MetricsSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.storedAt.IsZero() || now.Sub(c.storedAt) >= c.ttl {
		return model.MetricsSnapshot{}, false
	}
	return c.value, true
}

// Put stores a snapshot and starts its TTL.
func (c *SnapshotCache) Put(snap model.MetricsSnapshot, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = snap
	c.storedAt = now
}

// Invalidate drops the cached snapshot immediately.
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storedAt = time.Time{}
}
