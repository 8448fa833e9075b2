package sandbox

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the system binary locator Graft node.
const NodeID graft.ID = "adapter.sandbox.locator"

func init() {
	graft.Register(graft.Node[*Locator]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{},
		Run: func(_ context.Context) (*Locator, error) {
			return NewLocator(), nil
		},
	})
}
