package dashboard

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// RenderCache memoizes rendered chart HTML so identical refreshes are cheap.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// ChartCache is an in-memory TTL cache for rendered charts.
type ChartCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cachedChart
}

type cachedChart struct {
	html    string
	expires time.Time
}

// NewChartCache builds a cache with the provided TTL.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		ttl:     ttl,
		entries: make(map[string]cachedChart),
	}
}

// GetOrRender returns a cached entry or renders/stores a new one.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if html, ok := c.get(key); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.set(key, html)
	return html, nil
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
	return entry.html, true
}

func (c *ChartCache) set(key, html string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cachedChart{
		html:    html,
		expires: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// RistrettoCache is a size-bounded render cache for long running servers.
type RistrettoCache struct {
	client *ristretto.Cache
	ttl    time.Duration
}

// NewRistrettoCache builds a cache bounded to maxBytes of rendered HTML.
func NewRistrettoCache(maxBytes int64, ttl time.Duration) (*RistrettoCache, error) {
	if maxBytes <= 0 {
		maxBytes = 16 << 20
	}
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("dashboard: init render cache: %w", err)
	}
	return &RistrettoCache{client: client, ttl: ttl}, nil
}

// GetOrRender returns a cached entry or renders/stores a new one.
func (c *RistrettoCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if c == nil || c.client == nil {
		return render()
	}
	if v, ok := c.client.Get(key); ok {
		if html, ok := v.(string); ok {
			return html, nil
		}
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.client.SetWithTTL(key, html, int64(len(html)), c.ttl)
	return html, nil
}

// Wait blocks until buffered writes are applied.
func (c *RistrettoCache) Wait() {
	if c != nil && c.client != nil {
		c.client.Wait()
	}
}

// Close releases the cache goroutines.
func (c *RistrettoCache) Close() {
	if c != nil && c.client != nil {
		c.client.Close()
	}
}

// specHash returns a deterministic hash for a chart spec.
func specHash(spec ChartSpec) string {
	b, err := json.Marshal(spec)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
