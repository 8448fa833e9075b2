package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/porcelain/internal/core/ports"
)

// NodeID is the unique identifier for the metadata store Graft node.
const NodeID graft.ID = "adapter.metadata_store"

func init() {
	graft.Register(graft.Node[ports.MetadataStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.MetadataStore, error) {
			store, err := NewStore()
			if err != nil {
				return nil, err
			}
			return store, nil
		},
	})
}
