package cache

import (
	"context"
	"sync"
	"time"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

type cachedProduct struct {
	product models.ProductDetail
	expires time.Time
}

// MemoryCache is a process local ProductCache with per entry expiry
type MemoryCache struct {
	mu    sync.RWMutex
	items map[int64]cachedProduct
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryCache creates an empty in-memory cache
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		items: make(map[int64]cachedProduct),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, id int64) (*models.ProductDetail, bool, error) {
	c.mu.RLock()
	cached, exists := c.items[id]
	c.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}
	if !c.now().Before(cached.expires) {
		c.mu.Lock()
		// Another writer may have refreshed the entry meanwhile
		if cur, ok := c.items[id]; ok && !c.now().Before(cur.expires) {
			delete(c.items, id)
		}
		c.mu.Unlock()
		return nil, false, nil
	}

	p := cached.product
	return &p, true, nil
}

func (c *MemoryCache) Set(_ context.Context, detail *models.ProductDetail) error {
	c.mu.Lock()
	c.items[detail.ID] = cachedProduct{
		product: *detail,
		expires: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, ids ...int64) error {
	c.mu.Lock()
	for _, id := range ids {
		delete(c.items, id)
	}
	c.mu.Unlock()
	return nil
}

// Len returns the number of entries, expired ones included
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *MemoryCache) Backend() string { return BackendMemory }

func (c *MemoryCache) Close() error { return nil }
