// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/chezflo/chezflo-api/internal/store"
)

const menusKeyPrefix = "menus:"

// MenuCache caches the published menu list of each content unit.
//
// A list loaded while an invalidation ran is returned but not stored, so a
// read racing a write cannot put stale rows back for a full TTL.
type MenuCache struct {
	typed *TypedCache[[]store.Menu]
	raw   Cacher

	mu  sync.Mutex
	gen uint64
}

// NewMenuCache creates a menu cache on top of c.
func NewMenuCache(c Cacher, ttl time.Duration) *MenuCache {
	return &MenuCache{
		typed: NewTypedCache[[]store.Menu](c, ttl),
		raw:   c,
	}
}

// MenusKey returns the cache key for the menus of one content unit.
func MenusKey(contentID int64) string {
	return menusKeyPrefix + strconv.FormatInt(contentID, 10)
}

// Get returns the menus of contentID, loading them with load on a miss.
func (c *MenuCache) Get(ctx context.Context, contentID int64, load func() ([]store.Menu, error)) ([]store.Menu, error) {
	key := MenusKey(contentID)
	if menus, ok := c.typed.Get(ctx, key); ok {
		return menus, nil
	}

	gen := c.generation()
	menus, err := load()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == gen {
		_ = c.typed.Set(ctx, key, menus)
	}
	return menus, nil
}

func (c *MenuCache) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *MenuCache) bump() {
	c.mu.Lock()
	c.gen++
	c.mu.Unlock()
}

// Invalidate drops the cached menus of the given content units.
func (c *MenuCache) Invalidate(ctx context.Context, contentIDs ...int64) error {
	c.bump()
	for _, id := range contentIDs {
		if err := c.typed.Delete(ctx, MenusKey(id)); err != nil {
			return err
		}
	}
	return nil
}

// InvalidateAll drops every cached menu list.
func (c *MenuCache) InvalidateAll(ctx context.Context) error {
	c.bump()
	return c.raw.DeleteByPrefix(ctx, menusKeyPrefix)
}
