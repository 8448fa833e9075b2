package goals

import (
	"context"
	"os"
	"path"
	"slices"
	"strings"

	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/zerr"
)

// Fmt formats the sources of every package and writes the result back into the build root.
// With check set nothing is written and unformatted sources fail the partition.
func (r *Runner) Fmt(ctx context.Context, pkgs []*domain.PackageEntity, check bool) ([]domain.GoalResult, error) {
	if r.opts.SkipFmt {
		return r.execute(ctx, GoalFmt, skipped(packageAddresses(pkgs)...))
	}

	parts := make([]partition, 0, len(pkgs))
	for _, pkg := range pkgs {
		inputs, err := r.packageInputs(pkg, false)
		if err != nil {
			return nil, err
		}

		args := []string{"fmt", manifestArg(pkg.Dir)}
		var outputs []string
		if check {
			args = append(args, "--check")
		} else {
			outputs = rustFiles(pkg.Sources)
		}

		parts = append(parts, partition{
			address: pkg.Address,
			apply:   !check,
			req: r.request(domain.ProcessRequest{
				Description: "Format " + pkg.Address.String(),
				Args:        args,
				InputFiles:  inputs,
				OutputFiles: outputs,
			}),
		})
	}
	return r.execute(ctx, GoalFmt, parts)
}

// Lint runs clippy on every package. Warnings on stderr do not fail a partition; a non-zero exit does.
func (r *Runner) Lint(ctx context.Context, pkgs []*domain.PackageEntity) ([]domain.GoalResult, error) {
	if r.opts.SkipLint {
		return r.execute(ctx, GoalLint, skipped(packageAddresses(pkgs)...))
	}

	parts := make([]partition, 0, len(pkgs))
	for _, pkg := range pkgs {
		inputs, err := r.packageInputs(pkg, false)
		if err != nil {
			return nil, err
		}

		args := []string{"clippy", "-q", "--locked", "--color=always", manifestArg(pkg.Dir)}
		if len(r.opts.ClippyArgs) > 0 {
			args = append(append(args, "--"), r.opts.ClippyArgs...)
		}

		parts = append(parts, partition{
			address: pkg.Address,
			req: r.request(domain.ProcessRequest{
				Description:    "Lint " + pkg.Address.String(),
				Args:           args,
				InputFiles:     inputs,
				CacheNamespace: namespace(pkg),
			}),
		})
	}
	return r.execute(ctx, GoalLint, parts)
}

// Test runs the library, binary and integration-test harnesses of every package, one partition each.
// A package without any harness reports no work.
func (r *Runner) Test(ctx context.Context, pkgs []*domain.PackageEntity) ([]domain.GoalResult, error) {
	var parts []partition
	for _, pkg := range pkgs {
		if r.opts.SkipTests || pkg.SkipTests {
			parts = append(parts, skipped(pkg.Address)...)
			continue
		}

		inputs, err := r.packageInputs(pkg, true)
		if err != nil {
			return nil, err
		}

		var harnesses []partition
		for _, a := range pkg.Artifacts {
			var selector string
			switch a.Kind {
			case domain.KindLibrary:
				selector = "--lib"
			case domain.KindBinary:
				selector = "--bin=" + a.Name
			case domain.KindTest:
				selector = "--test=" + a.Name
			default:
				continue
			}

			harnesses = append(harnesses, partition{
				address: a.Address,
				req: r.request(domain.ProcessRequest{
					Description:    "Test " + a.Address.String(),
					Args:           []string{"test", "--locked", "--color=always", manifestArg(pkg.Dir), selector},
					InputFiles:     inputs,
					CacheNamespace: namespace(pkg),
				}),
			})
		}

		if len(harnesses) == 0 {
			parts = append(parts, partition{address: pkg.Address, outcome: domain.OutcomeNoWork})
			continue
		}
		parts = append(parts, harnesses...)
	}
	return r.execute(ctx, GoalTest, parts)
}

// Package builds every binary of every package into the dist directory of the build root.
// A package without binaries reports no work.
func (r *Runner) Package(ctx context.Context, pkgs []*domain.PackageEntity) ([]domain.GoalResult, error) {
	var parts []partition
	for _, pkg := range pkgs {
		bins := pkg.ArtifactsOfKind(domain.KindBinary)
		if len(bins) == 0 {
			parts = append(parts, partition{address: pkg.Address, outcome: domain.OutcomeNoWork})
			continue
		}
		for _, bin := range bins {
			part, err := r.buildPartition(pkg, bin)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
		}
	}
	return r.execute(ctx, GoalPackage, parts)
}

// Run builds one binary and executes it on the host with args, returning its standard output.
func (r *Runner) Run(
	ctx context.Context,
	pkg *domain.PackageEntity,
	bin *domain.ArtifactEntity,
	args []string,
) (*domain.GoalResult, []byte, error) {
	if bin.Kind != domain.KindBinary {
		err := zerr.With(domain.ErrEntityNotFound, "address", bin.Address.String())
		return nil, nil, zerr.With(err, "reason", "not a binary")
	}

	part, err := r.buildPartition(pkg, bin)
	if err != nil {
		return nil, nil, err
	}
	part.hold = true

	results, err := r.execute(ctx, GoalRun, []partition{part})
	if err != nil {
		return &results[0], nil, err
	}

	res := &results[0]
	if res.OutputDir != "" {
		defer func() { _ = os.RemoveAll(res.OutputDir) }()
	}
	if len(res.Outputs) != 1 {
		return res, nil, zerr.With(domain.ErrMissingOutput, "address", bin.Address.String())
	}

	stdout, err := r.executor.Exec(ctx, res.Outputs[0], args, nil)
	if err != nil {
		return res, stdout, zerr.With(err, "address", bin.Address.String())
	}
	return res, stdout, nil
}

func (r *Runner) buildPartition(pkg *domain.PackageEntity, bin *domain.ArtifactEntity) (partition, error) {
	inputs, err := r.packageInputs(pkg, false)
	if err != nil {
		return partition{}, err
	}

	profile := "debug"
	args := []string{"build"}
	if r.opts.Release {
		profile = "release"
		args = append(args, "--release")
	}
	args = append(args, manifestArg(pkg.Dir), "--locked", "--bin="+bin.Name)

	output := strings.NewReplacer("{profile}", profile, "{name}", bin.Name).Replace(pkg.OutputPathTemplate)

	return partition{
		address: bin.Address,
		dist:    path.Join(domain.DistDirName, pkg.Dir),
		req: r.request(domain.ProcessRequest{
			Description:    "Build " + bin.Address.String(),
			Args:           args,
			InputFiles:     inputs,
			OutputFiles:    []string{output},
			CacheNamespace: namespace(pkg),
		}),
	}, nil
}

// GenerateLockfiles resolves one lockfile per workspace and one per loose package, in directory order.
// Workspace members share the workspace lockfile and get no partition of their own.
func (r *Runner) GenerateLockfiles(
	ctx context.Context,
	universe *domain.Universe,
	mapping *domain.PackageMapping,
) ([]domain.GoalResult, error) {
	type unit struct {
		address domain.Address
		dir     string
		inputs  []string
	}
	var units []unit

	for _, addr := range mapping.WorkspaceAddresses() {
		ws, ok := universe.Workspace(addr)
		if !ok {
			return nil, zerr.With(domain.ErrEntityNotFound, "address", addr.String())
		}

		inputs, err := r.resolver.ResolveInputs(r.opts.Root, ws.Dir, []string{domain.ManifestFileName, domain.LockfileName})
		if err != nil {
			return nil, zerr.With(err, "address", addr.String())
		}
		starts := []domain.Address{addr}
		for _, m := range mapping.Members(addr) {
			inputs = append(inputs, m.Package.Sources...)
			starts = append(starts, m.Package.MarkerAddress())
			starts = append(starts, r.devOf(m.Package)...)
		}
		if r.closure != nil {
			reached, err := r.closure.Files(starts...)
			if err != nil {
				return nil, zerr.With(err, "address", addr.String())
			}
			inputs = append(inputs, reached...)
		}
		slices.Sort(inputs)
		units = append(units, unit{address: addr, dir: ws.Dir, inputs: slices.Compact(inputs)})
	}
	for _, pkg := range mapping.Loose {
		inputs, err := r.packageInputs(pkg, true)
		if err != nil {
			return nil, err
		}
		units = append(units, unit{address: pkg.Address, dir: pkg.Dir, inputs: inputs})
	}

	slices.SortFunc(units, func(a, b unit) int { return a.address.Compare(b.address) })

	parts := make([]partition, 0, len(units))
	for _, u := range units {
		parts = append(parts, partition{
			address: u.address,
			apply:   true,
			req: r.request(domain.ProcessRequest{
				Description: "Lock " + u.address.String(),
				Args:        []string{"update", "--color=always", manifestArg(u.dir)},
				InputFiles:  u.inputs,
				OutputFiles: []string{domain.LockfilePathFor(u.dir)},
			}),
		})
	}
	return r.execute(ctx, GoalLockfiles, parts)
}

// namespace keys the shared compiler output cache by package directory.
func namespace(pkg *domain.PackageEntity) string {
	if pkg.Dir == "" {
		return pkg.Name
	}
	return pkg.Dir
}

func rustFiles(sources []string) []string {
	var out []string
	for _, s := range sources {
		if strings.HasSuffix(s, ".rs") {
			out = append(out, s)
		}
	}
	return out
}
