package shell

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/porcelain/internal/adapters/logger"
	"go.trai.ch/porcelain/internal/core/ports"
)

// NodeID is the unique identifier for the host executor Graft node.
const NodeID graft.ID = "adapter.host_executor"

func init() {
	graft.Register(graft.Node[ports.HostExecutor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.HostExecutor, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewHostExecutor(log), nil
		},
	})
}
