package metadata

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/porcelain/internal/core/ports"
)

// NodeID is the unique identifier for the metadata parser Graft node.
const NodeID graft.ID = "adapter.metadata"

func init() {
	graft.Register(graft.Node[ports.MetadataParser]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.MetadataParser, error) {
			return NewParser(), nil
		},
	})
}
