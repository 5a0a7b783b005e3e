// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"sync"
	"time"
)

// =============================================================================
// ASSET CACHE
// =============================================================================

// cachedAsset is one cached response body.
type cachedAsset struct {
	Body        []byte
	ContentType string
	FetchedAt   time.Time
}

// assetCache is an in-memory response cache keyed by request path.
type assetCache struct {
	mu     sync.RWMutex
	assets map[string]cachedAsset
}

func newAssetCache() *assetCache {
	return &assetCache{assets: make(map[string]cachedAsset)}
}

// Get returns the cached asset for path.
func (c *assetCache) Get(path string) (cachedAsset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.assets[path]
	return a, ok
}

// Put stores an asset, replacing any previous entry for the path.
func (c *assetCache) Put(path string, body []byte, contentType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assets[path] = cachedAsset{
		Body:        body,
		ContentType: contentType,
		FetchedAt:   time.Now(),
	}
}

// Len returns the number of cached assets.
func (c *assetCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.assets)
}
