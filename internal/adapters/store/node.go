package store

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/devd/internal/adapters/manifest"
	"go.trai.ch/devd/internal/core/ports"
)

// NodeID is the unique identifier for the version store Graft node.
const NodeID graft.ID = "adapter.version_store"

func init() {
	graft.Register(graft.Node[ports.VersionStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{manifest.NodeID},
		Run: func(ctx context.Context) (ports.VersionStore, error) {
			manifests, err := graft.Dep[ports.ManifestReader](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(manifests), nil
		},
	})
}
