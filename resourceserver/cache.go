// Package resourceserver wraps a route handler with x402 payment gating:
// extract the receipt token from the request, verify it, and either pass
// a verified Payment through to the handler or answer with a 402.
package resourceserver

import (
	"sync"
	"time"

	"github.com/402labs/facilitator"
)

// verificationEntry caches one token's verification outcome.
type verificationEntry struct {
	receipt   *x402.Receipt
	expiresAt time.Time
}

// verificationMaxEntries bounds the cache size; once reached, the next
// write evicts one expired (or, failing that, arbitrary) entry before
// inserting.
const verificationMaxEntries = 1000

// verificationCache holds recently-verified receipt tokens so a resource
// server doesn't re-run signature verification on every request for the
// same token within its TTL.
type verificationCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]verificationEntry
}

func newVerificationCache(ttl time.Duration) *verificationCache {
	return &verificationCache{ttl: ttl, entries: make(map[string]verificationEntry)}
}

func (c *verificationCache) get(token string) (*x402.Receipt, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[token]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, token)
		return nil, false
	}
	return entry.receipt, true
}

func (c *verificationCache) set(token string, receipt *x402.Receipt) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= verificationMaxEntries {
		c.evictOne()
	}
	c.entries[token] = verificationEntry{receipt: receipt, expiresAt: time.Now().Add(c.ttl)}
}

// evictOne removes one entry: the first expired one found, or else an
// arbitrary one. Caller must hold mu.
func (c *verificationCache) evictOne() {
	now := time.Now()
	for k, v := range c.entries {
		if now.After(v.expiresAt) {
			delete(c.entries, k)
			return
		}
	}
	for k := range c.entries {
		delete(c.entries, k)
		return
	}
}
