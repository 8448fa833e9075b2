package rustup

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/porcelain/internal/core/ports"
)

// NodeID is the unique identifier for the downloader Graft node.
const NodeID graft.ID = "adapter.downloader"

func init() {
	graft.Register(graft.Node[ports.Downloader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{},
		Run: func(_ context.Context) (ports.Downloader, error) {
			var progress io.Writer = os.Stderr
			if os.Getenv("CI") != "" {
				progress = nil
			}
			return NewDownloader(http.DefaultClient, progress), nil
		},
	})
}
