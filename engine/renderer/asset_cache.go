package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-glb/engine/loader"
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/binder"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/texture"
	"github.com/google/uuid"
)

// CachedAsset is a loaded asset together with every GPU object built from it.
type CachedAsset struct {
	ID        uuid.UUID
	Asset     *loader.Asset
	Model     model.Model
	Materials material.Set
	Textures  *texture.TextureSet
	Bindings  *binder.Bindings
}

// Hash returns the content hash the entry is cached under.
func (c *CachedAsset) Hash() string {
	return c.Asset.Hash
}

// Frame returns the draw of the asset.
func (c *CachedAsset) Frame() Frame {
	return Frame{
		Pipeline:     c.Bindings.Pipeline.RenderPipeline(),
		BindGroups:   c.Bindings.BindGroups(),
		VertexBuffer: c.Model.VertexBuffer(),
		IndexBuffer:  c.Model.IndexBuffer(),
		IndexCount:   c.Model.IndexCount(),
	}
}

// Release frees the bindings, textures and model buffers.
func (c *CachedAsset) Release() {
	if c.Bindings != nil {
		c.Bindings.Release()
		c.Bindings = nil
	}
	if c.Textures != nil {
		c.Textures.Release()
		c.Textures = nil
	}
	if c.Model != nil {
		c.Model.Release()
		c.Model = nil
	}
}

// AssetCache maps content hashes to built assets. It is safe for concurrent use.
type AssetCache struct {
	mu      sync.RWMutex
	entries map[string]*CachedAsset
}

// NewAssetCache returns an empty cache.
func NewAssetCache() *AssetCache {
	return &AssetCache{entries: make(map[string]*CachedAsset)}
}

// Get returns the entry cached under hash.
func (c *AssetCache) Get(hash string) (*CachedAsset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[hash]
	return e, ok
}

// Put caches entry under its hash. An existing entry with the same hash is released and replaced.
func (c *AssetCache) Put(entry *CachedAsset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.entries[entry.Hash()]; ok && old != entry {
		old.Release()
	}
	c.entries[entry.Hash()] = entry
}

// Invalidate releases and removes the entry cached under hash.
//
// Returns:
//   - bool: true if an entry was removed
func (c *AssetCache) Invalidate(hash string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[hash]
	if !ok {
		return false
	}
	e.Release()
	delete(c.entries, hash)
	return true
}

// Len returns the number of cached entries.
func (c *AssetCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Release releases and removes every entry.
func (c *AssetCache) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for hash, e := range c.entries {
		e.Release()
		delete(c.entries, hash)
	}
}
