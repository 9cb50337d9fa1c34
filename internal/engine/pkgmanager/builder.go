package pkgmanager

import (
	"go.trai.ch/devd/internal/core/domain"
	"go.trai.ch/devd/internal/core/ports"
)

// Builder holds the collaborators that do not depend on configuration and
// creates a Factory once the configuration is known.
type Builder struct {
	Store     ports.VersionStore
	Registry  ports.RegistryOpener
	Installer ports.Installer
	Manifests ports.ManifestReader
	Logger    ports.Logger
	Tracer    ports.Tracer
}

// Build opens the configured registry and creates a Factory.
func (b *Builder) Build(cfg *domain.Config) (*Factory, error) {
	registry, err := b.Registry.Open(cfg.Registry)
	if err != nil {
		return nil, domain.Tag(domain.ErrConfiguration, err)
	}
	return NewFactory(b.Store, registry, b.Installer, b.Manifests, b.Logger, b.Tracer, OptionsFromConfig(cfg))
}
