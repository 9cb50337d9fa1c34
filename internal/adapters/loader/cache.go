package loader

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/devd/internal/core/domain"
	"go.trai.ch/devd/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ModuleLoader = (*Cache)(nil)

type cacheEntry struct {
	capability  domain.Capability
	fingerprint uint64
}

// Cache memoizes capabilities by package path.
// An entry is rebuilt after Invalidate or when the entry file content changes.
type Cache struct {
	mu      sync.Mutex
	next    ports.ModuleLoader
	entries map[string]cacheEntry
}

// NewCache wraps next with a cache.
func NewCache(next ports.ModuleLoader) *Cache {
	return &Cache{next: next, entries: make(map[string]cacheEntry)}
}

// Load implements ports.ModuleLoader.
func (c *Cache) Load(ctx context.Context, pkg domain.ResolvedPackage) (domain.Capability, error) {
	key := filepath.Clean(pkg.Path)
	fingerprint, err := fingerprintFile(pkg.EntryPath())
	if err != nil {
		c.Invalidate(key)
		return c.next.Load(ctx, pkg)
	}

	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok && entry.fingerprint == fingerprint {
		return entry.capability, nil
	}

	capability, err := c.next.Load(ctx, pkg)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{capability: capability, fingerprint: fingerprint}
	c.mu.Unlock()
	return capability, nil
}

// Invalidate drops the entry for path so the next Load rebuilds it.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, filepath.Clean(path))
}

func fingerprintFile(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is the entry of a resolved package
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open entry file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash entry file"), "path", path)
	}
	return hasher.Sum64(), nil
}
