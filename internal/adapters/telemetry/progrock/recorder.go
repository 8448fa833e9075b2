// Package progrock provides the Progrock implementation of the telemetry adapter.
package progrock

import (
	"context"
	"io"
	"strconv"
	"sync/atomic"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/porcelain/internal/core/ports"
)

var _ ports.Telemetry = (*Recorder)(nil)

type parentKey struct{}

// Recorder implements ports.Telemetry on a progrock tape.
// A vertex recorded under the context returned by an earlier Record lists that vertex as its input,
// so downloads and process runs hang below the install or goal that started them.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder
	seq atomic.Uint64
}

// New creates a new Recorder with a default tape.
func New() ports.Telemetry {
	return NewRecorder(progrock.NewTape())
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{
		w:   w,
		rec: progrock.NewRecorder(w),
	}
}

// Record starts a vertex. Every call gets its own vertex, even when two processes share a description.
func (r *Recorder) Record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	d := digest.FromString(name + "#" + strconv.FormatUint(r.seq.Add(1), 10))

	var opts []progrock.VertexOpt
	if parent, ok := ctx.Value(parentKey{}).(digest.Digest); ok {
		opts = append(opts, progrock.WithInputs(parent))
	}

	v := r.rec.Vertex(d, name, opts...)
	return context.WithValue(ctx, parentKey{}, d), vertex{v}
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	return r.w.Close()
}

type vertex struct {
	*progrock.VertexRecorder
}

func (v vertex) Stdout() io.Writer  { return v.VertexRecorder.Stdout() }
func (v vertex) Stderr() io.Writer  { return v.VertexRecorder.Stderr() }
func (v vertex) Complete(err error) { v.Done(err) }
