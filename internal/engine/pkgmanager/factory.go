// Package pkgmanager resolves, installs and prunes versions of the core
// package and of plugins.
package pkgmanager

import (
	"sync"

	"go.trai.ch/devd/internal/core/domain"
	"go.trai.ch/devd/internal/core/policy"
	"go.trai.ch/devd/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// Options are the runtime settings of a Factory.
type Options struct {
	// Base is the root of the versioned store.
	Base string
	// Registry is passed to the install worker.
	Registry     string
	CorePackage  string
	PluginPrefix string
	AutoUpdate   bool
	AutoClean    bool
}

// OptionsFromConfig maps the project configuration onto Options.
func OptionsFromConfig(cfg *domain.Config) Options {
	return Options{
		Base:         cfg.Home,
		Registry:     cfg.Registry,
		CorePackage:  cfg.CorePackage,
		PluginPrefix: cfg.PluginPrefix,
		AutoUpdate:   cfg.AutoUpdate,
		AutoClean:    cfg.AutoClean,
	}
}

// Factory owns the collaborators shared by every Manager it creates.
type Factory struct {
	store     ports.VersionStore
	registry  ports.Registry
	installer ports.Installer
	manifests ports.ManifestReader
	logger    ports.Logger
	tracer    ports.Tracer
	opts      Options

	installs singleflight.Group
	updates  sync.WaitGroup
}

// NewFactory creates a Factory. An empty base directory is a configuration error.
func NewFactory(
	store ports.VersionStore,
	registry ports.Registry,
	installer ports.Installer,
	manifests ports.ManifestReader,
	logger ports.Logger,
	tracer ports.Tracer,
	opts Options,
) (*Factory, error) {
	if opts.Base == "" {
		return nil, domain.Tag(domain.ErrConfiguration, domain.ErrHomeNotFound)
	}
	if opts.CorePackage == "" {
		opts.CorePackage = domain.DefaultCorePackage
	}
	if opts.PluginPrefix == "" {
		opts.PluginPrefix = domain.DefaultPluginPrefix
	}
	return &Factory{
		store:     store,
		registry:  registry,
		installer: installer,
		manifests: manifests,
		logger:    logger,
		tracer:    tracer,
		opts:      opts,
	}, nil
}

// Base returns the root of the versioned store.
func (f *Factory) Base() string {
	return f.opts.Base
}

// Core creates the manager of the core package. host is the launcher version.
func (f *Factory) Core(host string) (*Manager, error) {
	return f.newManager(domain.CoreIdentity(f.opts.CorePackage), domain.CoreRoot(f.opts.Base), host)
}

// Plugin creates the manager of a plugin. host is the version of the loaded core.
func (f *Factory) Plugin(name, host string) (*Manager, error) {
	if err := domain.ValidatePluginName(name); err != nil {
		return nil, domain.Tag(domain.ErrConfiguration, err)
	}
	return f.newManager(domain.PluginIdentity(name, f.opts.PluginPrefix), domain.PluginRoot(f.opts.Base, name), host)
}

func (f *Factory) newManager(identity domain.PackageIdentity, root, host string) (*Manager, error) {
	if !policy.Valid(host) {
		return nil, domain.Tag(domain.ErrConfiguration, zerr.With(domain.ErrInvalidHostVersion, "host", host))
	}
	if err := f.store.EnsureRoot(root); err != nil {
		return nil, domain.Tag(domain.ErrConfiguration, err)
	}
	return &Manager{
		factory:  f,
		identity: identity,
		root:     root,
		host:     host,
		active:   make(map[string]int),
	}, nil
}

// Plugins returns the names of the plugins that have a store directory.
func (f *Factory) Plugins() ([]string, error) {
	return f.store.ListPackages(domain.PluginsRoot(f.opts.Base))
}

// RemoveAll deletes the whole store.
func (f *Factory) RemoveAll() error {
	return f.store.RemoveAll(f.opts.Base)
}

// Wait blocks until background auto-updates have finished.
func (f *Factory) Wait() {
	f.updates.Wait()
}
