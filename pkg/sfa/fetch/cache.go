package fetch

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/komsit37/sfa/pkg/sfa/types"
)

// CacheFetcher decorates a Fetcher with a TTL+LRU cache keyed by symbol.
type CacheFetcher struct {
	next Fetcher
	ttl  time.Duration
	size int
	now  func() time.Time

	mu    sync.Mutex
	items map[string]cacheEntry
	order []string // simple LRU order, oldest at index 0
}

type cacheEntry struct {
	at  time.Time
	raw types.RawFundamentals
}

func NewCacheFetcher(next Fetcher, ttl time.Duration, size int) *CacheFetcher {
	if size <= 0 {
		size = 128
	}
	return &CacheFetcher{next: next, ttl: ttl, size: size, now: time.Now, items: make(map[string]cacheEntry)}
}

func (c *CacheFetcher) Fetch(ctx context.Context, sym string) (types.RawFundamentals, error) {
	k := strings.ToUpper(strings.TrimSpace(sym))
	if k == "" {
		return nil, ErrEmptySymbol
	}
	now := c.now()
	c.mu.Lock()
	if ent, ok := c.items[k]; ok {
		if now.Sub(ent.at) <= c.ttl {
			c.touchLocked(k)
			raw := ent.raw
			c.mu.Unlock()
			return raw, nil
		}
		delete(c.items, k)
		c.removeFromOrderLocked(k)
	}
	c.mu.Unlock()

	raw, err := c.next.Fetch(ctx, sym)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if _, ok := c.items[k]; ok {
		c.removeFromOrderLocked(k)
	}
	c.items[k] = cacheEntry{at: now, raw: raw}
	c.order = append(c.order, k)
	for len(c.items) > c.size && len(c.order) > 0 {
		old := c.order[0]
		c.order = c.order[1:]
		delete(c.items, old)
	}
	c.mu.Unlock()
	return raw, nil
}

// Len returns the number of cached symbols.
func (c *CacheFetcher) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *CacheFetcher) touchLocked(k string) {
	c.removeFromOrderLocked(k)
	c.order = append(c.order, k)
}

func (c *CacheFetcher) removeFromOrderLocked(k string) {
	for i, v := range c.order {
		if v == k {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
