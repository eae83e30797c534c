package application

import (
	"sync"
	"time"

	"github.com/example/mentorhub/internal/calendar"
)

// itemCache stores recently merged calendar items to avoid refetching both
// sources for repeated month views while the underlying data is unchanged.
type itemCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]itemCacheEntry
}

type itemCacheEntry struct {
	items     []calendar.Item
	expiresAt time.Time
}

func newItemCache(ttl time.Duration, maxEntries int, now func() time.Time) *itemCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &itemCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]itemCacheEntry),
	}
}

func (c *itemCache) Get(key string) ([]calendar.Item, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneItems(entry.items), true
}

func (c *itemCache) Store(key string, items []calendar.Item) {
	if c == nil {
		return
	}
	cloned := cloneItems(items)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = itemCacheEntry{items: cloned, expiresAt: expiry}
}

func (c *itemCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]itemCacheEntry)
	c.mu.Unlock()
}

func (c *itemCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *itemCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneItems(items []calendar.Item) []calendar.Item {
	if len(items) == 0 {
		return nil
	}
	out := make([]calendar.Item, len(items))
	copy(out, items)
	return out
}
