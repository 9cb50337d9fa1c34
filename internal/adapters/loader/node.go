package loader

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/devd/internal/adapters/manifest"
	"go.trai.ch/devd/internal/core/ports"
)

// NodeID is the unique identifier for the module loader Graft node.
const NodeID graft.ID = "adapter.loader"

func init() {
	graft.Register(graft.Node[*Cache]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{manifest.NodeID},
		Run: func(ctx context.Context) (*Cache, error) {
			manifests, err := graft.Dep[ports.ManifestReader](ctx)
			if err != nil {
				return nil, err
			}
			return NewCache(NewRegistry(NewDescriptorLoader(manifests))), nil
		},
	})
}
