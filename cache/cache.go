// Package cache keeps recent count responses so repeat lookups of the same
// profile within a caller-chosen freshness window skip the browser.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/use-agent/badgecount/models"
)

// entry holds a cached response with its creation timestamp.
type entry struct {
	response  models.CountResponse
	createdAt time.Time
}

// Cache is a bounded in-memory cache of count responses.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
}

// New creates a Cache holding at most maxEntries responses. A background
// goroutine evicts entries older than one hour every five minutes.
func New(maxEntries int) *Cache {
	c := newCache(maxEntries)
	go c.cleanupLoop(5 * time.Minute)
	return c
}

func newCache(maxEntries int) *Cache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        time.Hour,
		now:        time.Now,
	}
}

// Key derives the cache key for a profile URL. Surrounding whitespace and
// the case of scheme and host are ignored; the path is case-sensitive.
func Key(profileURL string) string {
	sum := sha256.Sum256([]byte(normalize(profileURL)))
	return hex.EncodeToString(sum[:])
}

func normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return u.String()
}

// Get returns a copy of the cached response if it is younger than maxAgeMs
// milliseconds. maxAgeMs <= 0 disables the lookup.
func (c *Cache) Get(key string, maxAgeMs int) (models.CountResponse, bool) {
	if maxAgeMs <= 0 {
		return models.CountResponse{}, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return models.CountResponse{}, false
	}

	maxAge := time.Duration(maxAgeMs) * time.Millisecond
	if c.now().Sub(e.createdAt) > maxAge {
		return models.CountResponse{}, false
	}
	return e.response, true
}

// Set stores resp under key. At capacity an arbitrary entry is evicted.
func (c *Cache) Set(key string, resp models.CountResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		// Map iteration order is random.
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	resp.CacheStatus = ""
	c.store[key] = &entry{response: resp, createdAt: c.now()}
}

// Len returns the number of cached responses.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

func (c *Cache) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		c.evictExpired()
	}
}

func (c *Cache) evictExpired() {
	cutoff := c.now().Add(-c.ttl)
	c.mu.Lock()
	for k, e := range c.store {
		if e.createdAt.Before(cutoff) {
			delete(c.store, k)
		}
	}
	c.mu.Unlock()
}
