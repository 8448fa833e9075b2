// Package goals runs the user-facing goals by partitioning work and invoking the toolchain per partition.
package goals

import (
	"context"
	"errors"
	"runtime"

	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/porcelain/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Goal names.
const (
	GoalFmt       = "fmt"
	GoalLint      = "lint"
	GoalTest      = "test"
	GoalPackage   = "package"
	GoalRun       = "run"
	GoalLockfiles = "generate-lockfiles"
)

// Options configures a Runner.
type Options struct {
	// Root is the build root that partition outputs are written back into.
	Root string

	Release    bool
	ClippyArgs []string

	SkipFmt   bool
	SkipLint  bool
	SkipTests bool

	// Parallelism bounds the number of concurrent partitions. Zero means one per CPU.
	Parallelism int
}

// Tools are the optional helper tools handed to every sandboxed process.
type Tools struct {
	Sccache *domain.InstalledTool
	Mtime   *domain.InstalledTool
}

// Runner executes goals against an installed toolchain.
type Runner struct {
	opts      Options
	toolchain *domain.Toolchain
	tools     Tools
	builder   ports.ProcessBuilder
	runner    ports.ProcessRunner
	resolver  ports.InputResolver
	executor  ports.HostExecutor
	metrics   ports.Metrics
	closure   *Closure
}

// NewRunner creates a new goal Runner.
func NewRunner(
	opts Options,
	toolchain *domain.Toolchain,
	tools Tools,
	builder ports.ProcessBuilder,
	runner ports.ProcessRunner,
	resolver ports.InputResolver,
	executor ports.HostExecutor,
	metrics ports.Metrics,
) *Runner {
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.NumCPU()
	}
	return &Runner{
		opts:      opts,
		toolchain: toolchain,
		tools:     tools,
		builder:   builder,
		runner:    runner,
		resolver:  resolver,
		executor:  executor,
		metrics:   metrics,
	}
}

// partition is one unit of work of a goal. A partition without a request reports its outcome directly.
type partition struct {
	address domain.Address
	req     *domain.ProcessRequest
	outcome domain.Outcome

	// apply writes the captured outputs back into the build root.
	apply bool

	// dist is the root-relative directory that receives the captured output files.
	dist string

	// hold keeps the captured outputs for the caller, which must release them.
	hold bool
}

func (r *Runner) request(req domain.ProcessRequest) *domain.ProcessRequest {
	req.Sccache = r.tools.Sccache
	req.Mtime = r.tools.Mtime
	return &req
}

// execute runs the partitions of a goal concurrently. Results keep the order of the partitions.
// Every failed partition contributes one error; the returned error wraps them all.
func (r *Runner) execute(ctx context.Context, goal string, parts []partition) ([]domain.GoalResult, error) {
	results := make([]domain.GoalResult, len(parts))
	errs := make([]error, len(parts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Parallelism)

	for i, p := range parts {
		g.Go(func() error {
			res, err := r.executePartition(gctx, goal, p)
			results[i] = res
			if err != nil {
				errs[i] = zerr.With(zerr.With(err, "goal", goal), "address", p.address.String())
			}
			r.metrics.ObserveGoal(goal, string(res.Outcome))
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		return results, errors.Join(domain.ErrGoalFailed, err)
	}
	return results, nil
}

func (r *Runner) executePartition(ctx context.Context, goal string, p partition) (domain.GoalResult, error) {
	res := domain.GoalResult{Goal: goal, Address: p.address, Outcome: p.outcome}
	if p.req == nil {
		return res, nil
	}
	res.Outcome = domain.OutcomeFailed

	spec, err := r.builder.Build(r.toolchain, *p.req)
	if err != nil {
		return res, err
	}

	out, err := r.runner.Run(ctx, spec)
	if err != nil {
		return res, err
	}

	res.ExitCode = out.ExitCode
	res.Stdout = string(out.Stdout)
	res.Stderr = string(out.Stderr)

	if !out.Succeeded() {
		releaseOutputs(out)
		failure := zerr.With(domain.ErrProcessFailed, "exit_code", out.ExitCode)
		return res, zerr.With(failure, "stderr", res.Stderr)
	}

	switch {
	case p.hold:
		res.Outputs = outputPaths(out)
		res.OutputDir = out.OutputDir
	case p.apply:
		res.Outputs, err = applyOutputs(r.opts.Root, out)
		releaseOutputs(out)
	case p.dist != "":
		res.Outputs, err = distribute(r.opts.Root, p.dist, out)
		releaseOutputs(out)
	default:
		releaseOutputs(out)
	}
	if err != nil {
		return res, err
	}

	res.Outcome = domain.OutcomeSucceeded
	return res, nil
}

func skipped(addresses ...domain.Address) []partition {
	parts := make([]partition, 0, len(addresses))
	for _, addr := range addresses {
		parts = append(parts, partition{address: addr, outcome: domain.OutcomeSkipped})
	}
	return parts
}

func packageAddresses(pkgs []*domain.PackageEntity) []domain.Address {
	addrs := make([]domain.Address, 0, len(pkgs))
	for _, pkg := range pkgs {
		addrs = append(addrs, pkg.Address)
	}
	return addrs
}

func manifestArg(dir string) string {
	return "--manifest-path=" + domain.ManifestPathFor(dir)
}
