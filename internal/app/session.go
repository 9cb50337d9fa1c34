package app

import (
	"context"
	"fmt"
	"sync"

	"go.trai.ch/devd/internal/core/domain"
	"go.trai.ch/devd/internal/engine/pkgmanager"
	"golang.org/x/sync/errgroup"
)

// maxParallelPlugins bounds how many plugins resolve at once.
const maxParallelPlugins = 4

// Module is a loaded package together with its capability.
type Module struct {
	Name       string
	Package    domain.ResolvedPackage
	Capability domain.Capability
}

// Loaded is the result of loading a project.
type Loaded struct {
	Core    Module
	Plugins []Module
}

// Session keeps the managers of one project alive across loads so that the
// previously used plugin versions survive retention.
type Session struct {
	app     *App
	config  *domain.Config
	factory *pkgmanager.Factory
	core    *pkgmanager.Manager
	host    string

	mu      sync.Mutex
	plugins map[string]*pkgmanager.Manager
}

// Load resolves the core, then every configured plugin against the core version.
func (s *Session) Load(ctx context.Context) (*Loaded, error) {
	core, err := s.loadModule(ctx, s.core, s.config.Core.LoadRequest())
	if err != nil {
		return nil, err
	}
	host := hostOf(core.Package, s.host)

	plugins := make([]Module, len(s.config.Plugins))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelPlugins)
	for i, req := range s.config.Plugins {
		g.Go(func() error {
			manager, err := s.plugin(req.Name, host)
			if err != nil {
				return err
			}
			module, err := s.loadModule(ctx, manager, req.LoadRequest())
			if err != nil {
				return err
			}
			plugins[i] = module
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Loaded{Core: core, Plugins: plugins}, nil
}

// Close waits for background updates started by the session.
func (s *Session) Close() {
	s.factory.Wait()
}

func (s *Session) loadModule(ctx context.Context, manager *pkgmanager.Manager, req domain.LoadRequest) (Module, error) {
	resolved, err := manager.Load(ctx, req)
	if err != nil {
		return Module{}, err
	}
	capability, err := s.app.modules.Load(ctx, resolved)
	if err != nil {
		return Module{}, err
	}
	s.app.logger.Debug(fmt.Sprintf("loaded %s %s from %s", manager.Identity(), resolved.Version, resolved.Path))
	return Module{Name: manager.Identity().Name, Package: resolved, Capability: capability}, nil
}

// plugin returns the manager of name for host, reusing it while the host is unchanged.
func (s *Session) plugin(name, host string) (*pkgmanager.Manager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if manager, ok := s.plugins[name]; ok && manager.Host() == host {
		return manager, nil
	}
	manager, err := s.factory.Plugin(name, host)
	if err != nil {
		return nil, err
	}
	s.plugins[name] = manager
	return manager, nil
}

// pluginHost resolves the configured core to learn the version plugins must accept.
func (s *Session) pluginHost(ctx context.Context) (string, error) {
	core, err := s.core.Load(ctx, s.config.Core.LoadRequest())
	if err != nil {
		return "", err
	}
	return hostOf(core, s.host), nil
}
