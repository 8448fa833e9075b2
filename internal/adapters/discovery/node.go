package discovery

import (
	"context"

	"github.com/grindlemire/graft"
	fsadapter "go.trai.ch/porcelain/internal/adapters/fs"
	"go.trai.ch/porcelain/internal/adapters/manifest"
	"go.trai.ch/porcelain/internal/core/ports"
)

// NodeID is the unique identifier for the tailor Graft node.
const NodeID graft.ID = "adapter.discovery.tailor"

func init() {
	graft.Register(graft.Node[*Tailor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fsadapter.NodeID, fsadapter.WalkerNodeID, manifest.NodeID},
		Run: func(ctx context.Context) (*Tailor, error) {
			fsys, err := graft.Dep[ports.FileSystem](ctx)
			if err != nil {
				return nil, err
			}
			walker, err := graft.Dep[*fsadapter.Walker](ctx)
			if err != nil {
				return nil, err
			}
			parser, err := graft.Dep[ports.ManifestParser](ctx)
			if err != nil {
				return nil, err
			}
			return NewTailor(fsys, walker, parser), nil
		},
	})
}
