package core

import (
	"sync"
	"sync/atomic"
	"time"
)

// TokenCache remembers the decoded expiry of access tokens it has seen,
// so repeated bearer checks skip the base64/JSON decode. Entries carry
// their own TTL; expiry enforcement against the clock still happens on
// every lookup, so a cached token is never treated as valid past its exp
// claim.
type TokenCache struct {
	mu      sync.RWMutex
	entries map[string]*cachedExpiry // key: full token string
	ttl     time.Duration
	maxSize int

	// counters
	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64
}

type cachedExpiry struct {
	exp      int64 // seconds since epoch, from the token payload
	cachedAt time.Time
}

type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// CacheStats are simple counters for cache behavior.
// These are intended for diagnostics and monitoring.
type CacheStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

func NewTokenCache(c CacheConfig) *TokenCache {
	if c.TTL == 0 {
		c.TTL = DefaultAccessTokenTTL
	}
	if c.MaxSize == 0 {
		c.MaxSize = 500
	}

	return &TokenCache{
		entries: make(map[string]*cachedExpiry),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
	}
}

// Get returns the cached expiry claim for token.
func (c *TokenCache) Get(token string) (int64, error) {
	c.mu.RLock()
	entry, exists := c.entries[token]
	c.mu.RUnlock()

	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return 0, ErrCacheNotFound
	}

	if time.Since(entry.cachedAt) > c.ttl {
		atomic.AddInt64(&c.misses, 1)
		c.Delete(token)
		return 0, ErrCacheNotFound
	}

	atomic.AddInt64(&c.hits, 1)
	return entry.exp, nil
}

func (c *TokenCache) Set(token string, exp int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Simple eviction if full
	if len(c.entries) >= c.maxSize {
		for k := range c.entries {
			delete(c.entries, k)
			atomic.AddInt64(&c.evictions, 1)
			break
		}
	}

	c.entries[token] = &cachedExpiry{exp: exp, cachedAt: time.Now()}
	atomic.AddInt64(&c.sets, 1)
}

func (c *TokenCache) Delete(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, existed := c.entries[token]; existed {
		delete(c.entries, token)
		atomic.AddInt64(&c.deletes, 1)
	}
}

func (c *TokenCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cachedExpiry)
}

func (c *TokenCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *TokenCache) Stats() CacheStats {
	return CacheStats{
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Sets:      atomic.LoadInt64(&c.sets),
		Deletes:   atomic.LoadInt64(&c.deletes),
		Evictions: atomic.LoadInt64(&c.evictions),
		Size:      c.Len(),
		TTL:       c.ttl,
	}
}
