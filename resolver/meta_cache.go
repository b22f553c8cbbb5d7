// api/resolver/meta_cache.go
package resolver

import (
	"sync"
	"time"

	"github.com/bastionlabs/bastion/api/model"
)

// metaCache keeps generation markers in-process for a few seconds so a burst
// of requests for one user hits Redis once. Entries are evicted lazily on
// read.
type metaCache struct {
	mu      sync.RWMutex
	entries map[string]metaEntry
}

type metaEntry struct {
	meta      *model.CacheMeta
	expiresAt time.Time
}

var sharedMetaCache = &metaCache{entries: make(map[string]metaEntry)}

func (c *metaCache) get(userID string) (*model.CacheMeta, bool) {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, userID)
		c.mu.Unlock()
		return nil, false
	}
	return entry.meta, true
}

func (c *metaCache) set(userID string, meta *model.CacheMeta, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[userID] = metaEntry{meta: meta, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}
