package inference

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the inference engine Graft node.
const NodeID graft.ID = "adapter.inference"

func init() {
	graft.Register(graft.Node[*Engine]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Engine, error) {
			return NewEngine(), nil
		},
	})
}
