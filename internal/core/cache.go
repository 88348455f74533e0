package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/JonMunkholm/explorer/internal/dataset"
)

// LoadFunc parses a table. It runs at most once per key at a time.
type LoadFunc func() (*dataset.Table, error)

// Cache memoises parsed tables by key. Failed loads are not stored.
type Cache interface {
	GetOrLoad(ctx context.Context, key string, load LoadFunc) (*dataset.Table, error)
	Invalidate(key string)
	Len() int
}

// CacheKey scopes a content hash to a session, so identical bytes uploaded
// by one session are parsed once.
func CacheKey(sessionID string, data []byte) string {
	sum := sha256.Sum256(data)
	return sessionID + "/" + hex.EncodeToString(sum[:])
}

// MemoryCache is an in-process Cache. Concurrent loads of one key share a
// single parse.
type MemoryCache struct {
	mu      sync.RWMutex
	tables  map[string]*dataset.Table
	waiters map[string]int
	group   singleflight.Group
}

// NewMemoryCache returns an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		tables:  make(map[string]*dataset.Table),
		waiters: make(map[string]int),
	}
}

// GetOrLoad returns the cached table for key, calling load on a miss. A
// cancelled ctx abandons the wait but not the shared load; a load whose
// callers have all gone is not stored.
func (c *MemoryCache) GetOrLoad(ctx context.Context, key string, load LoadFunc) (*dataset.Table, error) {
	c.mu.Lock()
	if t, ok := c.tables[key]; ok {
		c.mu.Unlock()
		return t, nil
	}
	c.waiters[key]++
	c.mu.Unlock()
	defer c.leave(key)

	ch := c.group.DoChan(key, func() (any, error) {
		c.mu.RLock()
		t, ok := c.tables[key]
		c.mu.RUnlock()
		if ok {
			return t, nil
		}

		t, err := load()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.waiters[key] > 0 {
			c.tables[key] = t
		}
		c.mu.Unlock()
		return t, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*dataset.Table), nil
	}
}

func (c *MemoryCache) leave(key string) {
	c.mu.Lock()
	if c.waiters[key]--; c.waiters[key] <= 0 {
		delete(c.waiters, key)
	}
	c.mu.Unlock()
}

// Invalidate drops key. Unknown keys are ignored.
func (c *MemoryCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.tables, key)
	c.mu.Unlock()
}

// Len returns the number of cached tables.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}
