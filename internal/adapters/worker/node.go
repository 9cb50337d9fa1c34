package worker

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the install worker Graft node.
const NodeID graft.ID = "adapter.worker"

func init() {
	graft.Register(graft.Node[*Worker]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Worker, error) {
			return New(), nil
		},
	})
}
