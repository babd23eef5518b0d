package sessioncache

import (
	"context"
	"sync"

	"github.com/trezcool/kitabu/core/cover"
)

// MemoryCache is the in-process fallback used when no redis is configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cover.CachedSelection
}

var _ cover.SessionCache = (*MemoryCache)(nil)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]cover.CachedSelection)}
}

func (c *MemoryCache) Get(_ context.Context, schoolID string, grade cover.Grade) (cover.CachedSelection, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sel, ok := c.entries[key(schoolID, grade)]
	return sel, ok, nil
}

func (c *MemoryCache) Put(_ context.Context, schoolID string, grade cover.Grade, sel cover.CachedSelection) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key(schoolID, grade)] = sel
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, schoolID string, grade cover.Grade) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key(schoolID, grade))
	return nil
}
