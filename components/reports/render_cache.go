package reports

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// RenderCache memoizes rendered chart previews so repeated fetches are cheap.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// defaultChartCacheEntries caps the cache: chart previews key on report
// config and data, so an active mapping editor can produce many variants.
const defaultChartCacheEntries = 256

// ChartCache is a bounded in-memory TTL cache for rendered chart markup.
type ChartCache struct {
	ttl        time.Duration
	maxEntries int
	mu         sync.RWMutex
	entries    map[string]cachedRender
}

type cachedRender struct {
	payload string
	expires time.Time
}

// NewChartCache builds a cache with the provided TTL.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		ttl:        ttl,
		maxEntries: defaultChartCacheEntries,
		entries:    make(map[string]cachedRender),
	}
}

// GetOrRender returns a cached entry or renders/stores a new one.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if payload, ok := c.get(key); ok {
		return payload, nil
	}
	payload, err := render()
	if err != nil {
		return "", err
	}
	c.set(key, payload)
	return payload, nil
}

func (c *ChartCache) get(key string) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expires) {
		if ok {
			c.mu.Lock()
			delete(c.entries, key)
			c.mu.Unlock()
		}
		return "", false
	}
	return entry.payload, true
}

func (c *ChartCache) set(key, payload string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}
	c.entries[key] = cachedRender{
		payload: payload,
		expires: time.Now().Add(c.ttl),
	}
}

// evictLocked drops expired entries, then the entry closest to expiry if the
// cache is still at capacity.
func (c *ChartCache) evictLocked() {
	now := time.Now()
	for key, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) < c.maxEntries {
		return
	}
	var victim string
	var soonest time.Time
	for key, entry := range c.entries {
		if victim == "" || entry.expires.Before(soonest) {
			victim, soonest = key, entry.expires
		}
	}
	delete(c.entries, victim)
}

// configHash returns a deterministic hash for a mapping configuration.
func configHash(cfg map[string]any) string {
	if len(cfg) == 0 {
		return "empty"
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
