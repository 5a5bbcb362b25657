// Package memcache is the in-memory tier of the image cache.
// Decoded images are kept in an LRU bounded by approximate pixel cost
// rather than entry count, so a handful of wallpapers cannot pin
// hundreds of megabytes while thumbnails get evicted.
package memcache

import (
	"image"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxCost is the default byte budget for decoded images.
const DefaultMaxCost = 64 << 20

// Mutable
type Cache struct {
	mu      sync.Mutex
	lru     *lru.Cache[string, image.Image]
	cost    int64
	maxCost int64
}

// New creates a memory cache holding at most maxCost bytes of decoded
// image data. A maxCost of zero selects DefaultMaxCost.
func New(maxCost int64) (*Cache, error) {
	if maxCost <= 0 {
		maxCost = DefaultMaxCost
	}

	c := &Cache{maxCost: maxCost}

	// Entry count is effectively unbounded; eviction is driven by cost.
	// The callback keeps the cost accountant in sync with whatever the
	// LRU decides to drop.
	l, err := lru.NewWithEvict[string, image.Image](1<<20, func(_ string, img image.Image) {
		c.cost -= Cost(img)
	})
	if err != nil {
		return nil, err
	}
	c.lru = l
	return c, nil
}

// Get returns the cached image for url, if present.
func (c *Cache) Get(url string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(url)
}

// Add stores img under url, evicting least-recently-used entries until
// the cache fits its cost budget again.
func (c *Cache) Add(url string, img image.Image) {
	if img == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.lru.Peek(url); ok {
		c.cost -= Cost(old)
	}
	c.lru.Add(url, img)
	c.cost += Cost(img)

	for c.cost > c.maxCost && c.lru.Len() > 1 {
		if _, _, ok := c.lru.RemoveOldest(); !ok {
			break
		}
	}
}

// Remove drops the entry for url.
func (c *Cache) Remove(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(url)
}

// Purge drops all entries.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.cost = 0
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// CurrentCost returns the byte cost of all cached images.
func (c *Cache) CurrentCost() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cost
}

// Cost estimates the decoded memory footprint of an image as four
// bytes per pixel of its bounds.
func Cost(img image.Image) int64 {
	if img == nil {
		return 0
	}
	b := img.Bounds()
	return int64(b.Dx()) * int64(b.Dy()) * 4
}
