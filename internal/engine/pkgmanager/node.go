package pkgmanager

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/devd/internal/adapters/installer" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/devd/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/devd/internal/adapters/manifest"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/devd/internal/adapters/registry"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/devd/internal/adapters/store"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/devd/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/devd/internal/core/ports"
)

// NodeID is the unique identifier for the package manager builder Graft node.
const NodeID graft.ID = "engine.pkgmanager"

func init() {
	graft.Register(graft.Node[*Builder]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			store.NodeID,
			registry.NodeID,
			installer.NodeID,
			manifest.NodeID,
			logger.NodeID,
			telemetry.NodeID,
		},
		Run: func(ctx context.Context) (*Builder, error) {
			versionStore, err := graft.Dep[ports.VersionStore](ctx)
			if err != nil {
				return nil, err
			}
			opener, err := graft.Dep[ports.RegistryOpener](ctx)
			if err != nil {
				return nil, err
			}
			spawner, err := graft.Dep[ports.Installer](ctx)
			if err != nil {
				return nil, err
			}
			manifests, err := graft.Dep[ports.ManifestReader](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			return &Builder{
				Store:     versionStore,
				Registry:  opener,
				Installer: spawner,
				Manifests: manifests,
				Logger:    log,
				Tracer:    tracer,
			}, nil
		},
	})
}
