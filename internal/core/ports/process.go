package ports

import (
	"context"

	"go.trai.ch/porcelain/internal/core/domain"
)

// ProcessBuilder turns a toolchain invocation into a hermetic process specification.
//
//go:generate go run go.uber.org/mock/mockgen -source=process.go -destination=mocks/mock_process.go -package=mocks
type ProcessBuilder interface {
	// Build is a pure transform of its inputs and the ambient system-binary locations.
	Build(toolchain *domain.Toolchain, req domain.ProcessRequest) (*domain.ProcessSpec, error)
}

// ProcessRunner executes process specifications.
type ProcessRunner interface {
	// Run executes the spec. A non-zero exit is reported through the result, not as an error.
	Run(ctx context.Context, spec *domain.ProcessSpec) (*domain.ProcessResult, error)
}
