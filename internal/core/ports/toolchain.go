package ports

import (
	"context"

	"go.trai.ch/porcelain/internal/core/domain"
)

// ToolchainInstaller owns the shared toolchain cache. It is the only component allowed to mutate it.
//
//go:generate go run go.uber.org/mock/mockgen -source=toolchain.go -destination=mocks/mock_toolchain.go -package=mocks
type ToolchainInstaller interface {
	// Install makes the requested toolchain available and returns a reference to it.
	// Concurrent calls are serialized across processes; a finished install is never repeated.
	Install(ctx context.Context, req domain.ToolchainRequest) (*domain.Toolchain, error)

	// InstallTool installs a helper tool built or fetched through the compiler driver.
	InstallTool(ctx context.Context, toolchain *domain.Toolchain, spec domain.ToolSpec) (*domain.InstalledTool, error)
}

// Downloader fetches a file and verifies it against an expected digest.
type Downloader interface {
	// Fetch downloads url into dest. dest is only created when the digest matches.
	Fetch(ctx context.Context, url, dest string, want domain.Digest) error
}

// HostExecutor runs a command directly on the host, outside any sandbox.
type HostExecutor interface {
	// Exec runs name with args and the given environment and returns its standard output.
	// A non-zero exit is returned as an error carrying the exit code and standard error.
	Exec(ctx context.Context, name string, args, env []string) ([]byte, error)
}
