package collector

import (
	"sync"
	"time"

	"QEngine/internal/model"
)

// snapshotCache is a bounded-TTL in-memory cache keyed by normalized
// symbol. Entries are immutable once written, so a single mutex around
// the map is all the synchronization needed.
type snapshotCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	snap    *model.MarketSnapshot
	expires time.Time
}

func newSnapshotCache(ttl time.Duration) *snapshotCache {
	return &snapshotCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *snapshotCache) get(symbol string) (*model.MarketSnapshot, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	e, ok := c.entries[symbol]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.snap, true
}

func (c *snapshotCache) put(symbol string, snap *model.MarketSnapshot) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[symbol] = cacheEntry{snap: snap, expires: time.Now().Add(c.ttl)}
	// Expired entries for other symbols are dropped opportunistically so
	// the map stays bounded by the set of recently requested symbols.
	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

func (c *snapshotCache) invalidate(symbol string) {
	c.mu.Lock()
	delete(c.entries, symbol)
	c.mu.Unlock()
}
