// Package telemetry provides telemetry adapters that need no backend.
package telemetry

import (
	"context"
	"io"

	"go.trai.ch/porcelain/internal/core/ports"
)

var _ ports.Telemetry = (*NoopTelemetry)(nil)

// NoopTelemetry is a no-op implementation of ports.Telemetry.
type NoopTelemetry struct{}

// NewNoop creates a new NoopTelemetry.
func NewNoop() *NoopTelemetry {
	return &NoopTelemetry{}
}

// Record returns ctx unchanged and a vertex that discards everything.
func (t *NoopTelemetry) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	return ctx, noopVertex{}
}

// Close does nothing.
func (t *NoopTelemetry) Close() error {
	return nil
}

type noopVertex struct{}

func (noopVertex) Stdout() io.Writer { return io.Discard }
func (noopVertex) Stderr() io.Writer { return io.Discard }
func (noopVertex) Complete(error)    {}
func (noopVertex) Cached()           {}
