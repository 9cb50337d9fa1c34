// Package loader turns resolved packages into capabilities.
package loader

import (
	"context"
	"maps"
	"sync"

	"go.trai.ch/devd/internal/core/domain"
	"go.trai.ch/devd/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ModuleLoader = (*Registry)(nil)

// Factory builds the capability of a package that is linked into the binary.
type Factory func(ctx context.Context, pkg domain.ResolvedPackage) (domain.Capability, error)

var (
	builtinMu sync.RWMutex
	builtins  = make(map[string]Factory)
)

// Register adds a statically linked factory under a package name.
// It is meant to be called from init functions.
func Register(name string, factory Factory) {
	builtinMu.Lock()
	defer builtinMu.Unlock()
	builtins[name] = factory
}

// Registry dispatches loads by package name and falls back to another loader
// for packages nothing registered.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	fallback  ports.ModuleLoader
}

// NewRegistry creates a Registry seeded with the factories added through Register.
// A nil fallback makes unknown packages fail with domain.ErrNoLoader.
func NewRegistry(fallback ports.ModuleLoader) *Registry {
	builtinMu.RLock()
	defer builtinMu.RUnlock()
	return &Registry{
		factories: maps.Clone(builtins),
		fallback:  fallback,
	}
}

// Register adds a factory to this registry only.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Load implements ports.ModuleLoader.
func (r *Registry) Load(ctx context.Context, pkg domain.ResolvedPackage) (domain.Capability, error) {
	r.mu.RLock()
	factory, ok := r.factories[pkg.Name]
	r.mu.RUnlock()

	if ok {
		return factory(ctx, pkg)
	}
	if r.fallback != nil {
		return r.fallback.Load(ctx, pkg)
	}
	return nil, zerr.With(domain.ErrNoLoader, "package", pkg.Name)
}
