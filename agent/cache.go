package agent

import (
	"sync"
	"time"
)

// cacheEntry is one cached receipt token with its expiry.
type cacheEntry struct {
	token     string
	expiresAt time.Time
}

// ReceiptCache holds previously-obtained receipt tokens keyed by
// contentId, so a client doesn't re-pay for the same resource inside the
// token's validity window. Every N accesses it sweeps expired entries
// rather than checking the whole map on every call.
type ReceiptCache struct {
	mu       sync.Mutex
	entries  map[string]cacheEntry
	accesses int
}

// sweepInterval is how many accesses trigger a full expired-entry sweep.
const sweepInterval = 100

// NewReceiptCache builds an empty ReceiptCache.
func NewReceiptCache() *ReceiptCache {
	return &ReceiptCache{entries: make(map[string]cacheEntry)}
}

// Get returns the cached token for contentId if present and unexpired.
// An expired entry is deleted and Get reports it as absent.
func (c *ReceiptCache) Get(contentId string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	entry, ok := c.entries[contentId]
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, contentId)
		return "", false
	}
	return entry.token, true
}

// Set stores token for contentId with an expiry ttl from now.
func (c *ReceiptCache) Set(contentId, token string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	c.entries[contentId] = cacheEntry{token: token, expiresAt: time.Now().Add(ttl)}
}

// Evict removes contentId unconditionally, used when a cached token is
// rejected by the resource server.
func (c *ReceiptCache) Evict(contentId string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, contentId)
}

// Size reports the number of live entries, sweeping expired ones first.
func (c *ReceiptCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweep()
	return len(c.entries)
}

// Keys reports the content ids of all live entries, sweeping expired ones
// first.
func (c *ReceiptCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweep()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

// touch increments the access counter and sweeps every sweepInterval
// accesses. Caller must hold mu.
func (c *ReceiptCache) touch() {
	c.accesses++
	if c.accesses%sweepInterval == 0 {
		c.sweep()
	}
}

// sweep removes every expired entry. Caller must hold mu.
func (c *ReceiptCache) sweep() {
	now := time.Now()
	for k, v := range c.entries {
		if now.After(v.expiresAt) {
			delete(c.entries, k)
		}
	}
}
