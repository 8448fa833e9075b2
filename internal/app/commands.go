package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/porcelain/internal/engine/goals"
	"go.trai.ch/zerr"
)

// Tailor prints the workspaces and packages that would be generated for the manifests below the build root.
func (a *App) Tailor(_ context.Context, cwd string) error {
	cfg, err := a.loadConfig(cwd)
	if err != nil {
		return err
	}
	if !cfg.Rust.Tailor {
		a.deps.Logger.Info("tailoring is disabled by rust.tailor")
		return nil
	}

	putative, failures := a.deps.Tailor.Find(cfg.Root)
	a.logFailures(failures)

	for _, p := range putative {
		_, _ = fmt.Fprintf(a.out, "%s\t%s\n", p.Kind, domain.NewAddress(p.Dir, p.Name))
	}
	return nil
}

// List prints every entity of the dependency graph in dependency order.
func (a *App) List(ctx context.Context, cwd string) error {
	s, err := a.load(ctx, cwd)
	if err != nil {
		return err
	}
	for n := range s.graph.Walk() {
		_, _ = fmt.Fprintln(a.out, n.Address.String())
	}
	return nil
}

// Deps prints the direct dependencies of each address, or all transitive dependencies.
func (a *App) Deps(ctx context.Context, cwd string, addresses []string, transitive bool) error {
	s, err := a.load(ctx, cwd)
	if err != nil {
		return err
	}

	for _, raw := range addresses {
		addr, err := domain.ParseAddress(raw)
		if err != nil {
			return err
		}
		if !s.universe.Contains(addr) {
			return zerr.With(domain.ErrEntityNotFound, "address", raw)
		}

		deps := s.graph.Dependencies(addr)
		if transitive {
			deps = closure(s.graph, addr)
		}
		for _, dep := range deps {
			_, _ = fmt.Fprintln(a.out, dep.String())
		}
	}
	return nil
}

// closure returns the transitive dependencies of addr, sorted.
func closure(g *domain.Graph, addr domain.Address) []domain.Address {
	seen := make(map[domain.Address]bool)
	var out []domain.Address
	queue := g.Dependencies(addr)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		out = append(out, next)
		queue = append(queue, g.Dependencies(next)...)
	}
	return domain.SortAddresses(out)
}

// goal loads a session, selects packages and runs one goal over them.
func (a *App) goal(
	ctx context.Context,
	cwd string,
	specs []string,
	run func(*goals.Runner, []*domain.PackageEntity) ([]domain.GoalResult, error),
) error {
	s, err := a.load(ctx, cwd)
	if err != nil {
		return err
	}
	pkgs, err := selectPackages(s.universe, specs)
	if err != nil {
		return err
	}

	results, err := run(a.goalRunner(s), pkgs)
	report(a.out, results)
	return err
}

// Fmt formats the selected packages, or only checks their formatting.
func (a *App) Fmt(ctx context.Context, cwd string, specs []string, check bool) error {
	return a.goal(ctx, cwd, specs, func(r *goals.Runner, pkgs []*domain.PackageEntity) ([]domain.GoalResult, error) {
		return r.Fmt(ctx, pkgs, check)
	})
}

// Lint lints the selected packages.
func (a *App) Lint(ctx context.Context, cwd string, specs []string) error {
	return a.goal(ctx, cwd, specs, func(r *goals.Runner, pkgs []*domain.PackageEntity) ([]domain.GoalResult, error) {
		return r.Lint(ctx, pkgs)
	})
}

// Test tests the selected packages.
func (a *App) Test(ctx context.Context, cwd string, specs []string) error {
	return a.goal(ctx, cwd, specs, func(r *goals.Runner, pkgs []*domain.PackageEntity) ([]domain.GoalResult, error) {
		return r.Test(ctx, pkgs)
	})
}

// Package builds the binaries of the selected packages.
func (a *App) Package(ctx context.Context, cwd string, specs []string) error {
	return a.goal(ctx, cwd, specs, func(r *goals.Runner, pkgs []*domain.PackageEntity) ([]domain.GoalResult, error) {
		return r.Package(ctx, pkgs)
	})
}

// GenerateLockfiles regenerates the lockfile of every workspace and loose package.
func (a *App) GenerateLockfiles(ctx context.Context, cwd string) error {
	s, err := a.load(ctx, cwd)
	if err != nil {
		return err
	}
	results, err := a.goalRunner(s).GenerateLockfiles(ctx, s.universe, s.mapping)
	report(a.out, results)
	return err
}

// Run builds the binary at address and runs it with args, printing its standard output.
func (a *App) Run(ctx context.Context, cwd, address string, args []string) error {
	s, err := a.load(ctx, cwd)
	if err != nil {
		return err
	}

	addr, err := domain.ParseAddress(address)
	if err != nil {
		return err
	}
	bin, ok := s.universe.Artifact(addr)
	if !ok {
		return zerr.With(domain.ErrEntityNotFound, "address", address)
	}
	pkg, ok := s.universe.PackageOf(bin)
	if !ok {
		return zerr.With(domain.ErrEntityNotFound, "address", bin.Package.String())
	}

	res, stdout, err := a.goalRunner(s).Run(ctx, pkg, bin, args)
	if res != nil && res.Failed() {
		report(a.out, []domain.GoalResult{*res})
	}
	_, _ = a.out.Write(stdout)
	return err
}

// InstallToolchain installs the configured toolchain and helper tools without touching the source tree.
func (a *App) InstallToolchain(ctx context.Context, cwd string) error {
	cfg, err := a.loadConfig(cwd)
	if err != nil {
		return err
	}
	tc, tools, err := a.installToolchain(ctx, cfg)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(a.out, "%s\t%s\n", tc, domain.NamedCachePath(cfg.CacheDir, domain.RustupCache))
	for _, tool := range []*domain.InstalledTool{tools.Sccache, tools.Mtime} {
		if tool != nil {
			_, _ = fmt.Fprintf(a.out, "%s-%s\t%s\n", tool.Spec.Name, tool.Spec.Version, tool.Path)
		}
	}
	return nil
}

// CleanOptions selects the caches removed by Clean.
type CleanOptions struct {
	Metadata   bool
	Sandboxes  bool
	Toolchains bool
}

// Clean removes cached state from the cache directory.
func (a *App) Clean(_ context.Context, cwd string, opts CleanOptions) error {
	cfg, err := a.loadConfig(cwd)
	if err != nil {
		return err
	}

	var paths []string
	if opts.Metadata {
		paths = append(paths, domain.MetadataStorePath(cfg.CacheDir))
	}
	if opts.Sandboxes {
		paths = append(paths, domain.SandboxRootPath(cfg.CacheDir), domain.OutputsPath(cfg.CacheDir, ""))
	}
	if opts.Toolchains {
		paths = append(paths,
			domain.NamedCachePath(cfg.CacheDir, domain.RustupCache),
			domain.NamedCachePath(cfg.CacheDir, domain.CargoCache),
			filepath.Join(cfg.CacheDir, domain.ToolsDirName),
			filepath.Join(cfg.CacheDir, domain.DownloadsDirName),
		)
	}

	for _, path := range paths {
		a.deps.Logger.Info("removing " + path)
		if err := os.RemoveAll(path); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to remove cache"), "path", path)
		}
	}
	return nil
}
