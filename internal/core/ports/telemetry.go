package ports

import (
	"context"
	"io"
	"time"
)

// Telemetry records units of work such as installs and sandboxed processes.
type Telemetry interface {
	// Record starts a new vertex.
	Record(ctx context.Context, name string) (context.Context, Vertex)
	// Close flushes the recording session.
	Close() error
}

// Vertex is one recorded unit of work.
type Vertex interface {
	// Stdout returns a writer capturing the standard output stream.
	Stdout() io.Writer
	// Stderr returns a writer capturing the error output stream.
	Stderr() io.Writer
	// Complete marks the vertex as finished.
	Complete(err error)
	// Cached marks the vertex as satisfied without doing work.
	Cached()
}

// Metrics records counters and durations for installs, processes and goals.
type Metrics interface {
	ObserveInstall(target string, d time.Duration, err error)
	ObserveProcess(description string, exitCode int, d time.Duration)
	ObserveGoal(goal, outcome string)
}
