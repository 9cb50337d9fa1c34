package installer

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/devd/internal/core/ports"
)

// NodeID is the unique identifier for the installer Graft node.
const NodeID graft.ID = "adapter.installer"

func init() {
	graft.Register(graft.Node[ports.Installer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Installer, error) {
			return NewSpawner()
		},
	})
}
