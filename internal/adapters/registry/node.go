package registry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/devd/internal/core/ports"
)

// NodeID is the unique identifier for the registry opener Graft node.
const NodeID graft.ID = "adapter.registry"

func init() {
	graft.Register(graft.Node[ports.RegistryOpener]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.RegistryOpener, error) {
			return NewOpener(DefaultTimeout), nil
		},
	})
}
