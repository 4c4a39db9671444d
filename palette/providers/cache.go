package providers

import (
	"context"
	"slices"
	"time"

	"taskdeck/log"
	"taskdeck/palette"

	"github.com/jellydator/ttlcache/v3"
)

// Cache memoizes provider search results for a short time, keyed by
// provider, query and context. Failed searches are not cached.
type Cache struct {
	cache *ttlcache.Cache[string, []palette.Result]
}

// NewCache creates a cache whose entries expire after ttl
func NewCache(ttl time.Duration) *Cache {
	c := ttlcache.New[string, []palette.Result](
		ttlcache.WithTTL[string, []palette.Result](ttl),
		ttlcache.WithDisableTouchOnHit[string, []palette.Result](),
	)
	go c.Start()
	return &Cache{cache: c}
}

// Wrap returns p with its Search served from the cache when possible.
// InitialResults is left alone since the controller loads it once.
func (c *Cache) Wrap(p palette.Provider) palette.Provider {
	if p.Search == nil {
		return p
	}
	search := p.Search
	id := p.ID
	p.Search = func(ctx context.Context, query string, pc palette.Context) ([]palette.Result, error) {
		key := id + "\x00" + query + "\x00" + pc.String()
		if item := c.cache.Get(key); item != nil {
			log.DebugLog.Printf("palette: cache hit for %s %q", id, query)
			return slices.Clone(item.Value()), nil
		}

		results, err := search(ctx, query, pc)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, slices.Clone(results), ttlcache.DefaultTTL)
		return results, nil
	}
	return p
}

// Invalidate drops every cached entry, e.g. after the underlying data changed
func (c *Cache) Invalidate() {
	c.cache.DeleteAll()
}

// Len returns the number of live entries
func (c *Cache) Len() int {
	return c.cache.Len()
}

// Close stops the cache expiration loop.
func (c *Cache) Close() {
	c.cache.Stop()
}
