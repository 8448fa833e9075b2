// Package inference derives dependency edges between packages from their manifests.
package inference

import (
	"context"
	"path"
	"runtime"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Engine infers dependencies. It holds no state; every call is a pure function of its arguments.
type Engine struct{}

// NewEngine creates a new Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// InferPackage returns the library artifacts the package reaches through path dependencies,
// plus the workspace that owns it. The result is sorted, deduplicated and never refers to pkg itself.
// Registry and git dependencies are ignored.
func (e *Engine) InferPackage(
	pkg *domain.PackageEntity,
	manifest *domain.Manifest,
	universe *domain.Universe,
	mapping *domain.PackageMapping,
) ([]domain.Address, error) {
	if manifest == nil {
		return nil, zerr.With(domain.ErrEntityNotFound, "path", pkg.ManifestPath())
	}

	deps, err := libraries(pkg, manifest.PathDependencies(), universe)
	if err != nil {
		return nil, err
	}
	if ws, ok := mapping.OwnerOf(pkg.Address); ok {
		deps = append(deps, ws)
	}
	return domain.SortAddresses(deps), nil
}

// inferSplit is InferPackage with dev-only libraries separated from the rest.
func (e *Engine) inferSplit(
	pkg *domain.PackageEntity,
	manifest *domain.Manifest,
	universe *domain.Universe,
	mapping *domain.PackageMapping,
) (build, dev []domain.Address, err error) {
	if manifest == nil {
		return nil, nil, zerr.With(domain.ErrEntityNotFound, "path", pkg.ManifestPath())
	}

	if build, err = libraries(pkg, manifest.BuildPathDependencies(), universe); err != nil {
		return nil, nil, err
	}
	if dev, err = libraries(pkg, manifest.DevPathDependencies(), universe); err != nil {
		return nil, nil, err
	}
	if ws, ok := mapping.OwnerOf(pkg.Address); ok {
		build = append(build, ws)
	}

	build = domain.SortAddresses(build)
	dev = slices.DeleteFunc(domain.SortAddresses(dev), func(a domain.Address) bool {
		_, found := slices.BinarySearchFunc(build, a, domain.Address.Compare)
		return found
	})
	return build, dev, nil
}

func libraries(pkg *domain.PackageEntity, paths []string, universe *domain.Universe) ([]domain.Address, error) {
	var deps []domain.Address
	for _, rel := range paths {
		dir, err := resolveDir(pkg.Dir, rel)
		if err != nil {
			return nil, zerr.With(err, "package", pkg.Address.String())
		}

		for _, a := range universe.ArtifactsAt(dir) {
			if a.Kind == domain.KindLibrary && a.Package != pkg.Address {
				deps = append(deps, a.Address)
			}
		}
	}
	return deps, nil
}

// InferWorkspace returns the sources entities of the workspace's resolved members.
func (e *Engine) InferWorkspace(ws *domain.WorkspaceEntity, mapping *domain.PackageMapping) []domain.Address {
	var deps []domain.Address
	for _, m := range mapping.Members(ws.Address) {
		deps = append(deps, m.Sources)
	}
	return domain.SortAddresses(deps)
}

// Inferred holds the derived edges of a universe, keyed by the consuming entity.
type Inferred struct {
	Packages   map[domain.Address][]domain.Address
	Workspaces map[domain.Address][]domain.Address

	// Dev holds the libraries reached only through dev-dependencies, keyed by package.
	Dev map[domain.Address][]domain.Address
}

// InferAll infers the dependencies of every package and workspace in the universe.
// A package whose inference fails is reported and left without derived edges; its siblings are unaffected.
func (e *Engine) InferAll(
	ctx context.Context,
	universe *domain.Universe,
	mapping *domain.PackageMapping,
) (*Inferred, []error) {
	out := &Inferred{
		Packages:   make(map[domain.Address][]domain.Address),
		Workspaces: make(map[domain.Address][]domain.Address),
		Dev:        make(map[domain.Address][]domain.Address),
	}
	for _, ws := range universe.Workspaces() {
		out.Workspaces[ws.Address] = e.InferWorkspace(ws, mapping)
	}

	var (
		mu       sync.Mutex
		failures []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, pkg := range universe.Packages() {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			manifest, _ := universe.Manifest(pkg.Dir)
			deps, dev, err := e.inferSplit(pkg, manifest, universe, mapping)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return nil
			}
			out.Packages[pkg.Address] = deps
			if len(dev) > 0 {
				out.Dev[pkg.Address] = dev
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		failures = append(failures, err)
	}
	return out, failures
}

// Graph assembles the dependency graph of the universe. Artifacts keep the edges they were generated
// with and package generators depend on their artifacts. Inferred package edges attach to the
// package marker, except dev-only edges, which attach to the integration tests. A dev-dependency
// back onto a dependent package therefore never closes a cycle.
func (e *Engine) Graph(universe *domain.Universe, inferred *Inferred) (*domain.Graph, error) {
	g := domain.NewGraph()

	for _, ws := range universe.Workspaces() {
		if err := g.AddNode(domain.Node{Address: ws.Address, Dependencies: inferred.Workspaces[ws.Address]}); err != nil {
			return nil, err
		}
	}

	for _, pkg := range universe.Packages() {
		children := make([]domain.Address, 0, len(pkg.Artifacts))
		for _, a := range pkg.Artifacts {
			children = append(children, a.Address)
			if err := g.AddNode(domain.Node{Address: a.Address, Dependencies: slices.Clone(a.Dependencies)}); err != nil {
				return nil, err
			}
		}
		if err := g.AddNode(domain.Node{Address: pkg.Address, Dependencies: domain.SortAddresses(children)}); err != nil {
			return nil, err
		}

		if deps := inferred.Packages[pkg.Address]; len(deps) > 0 {
			if err := g.AddEdges(pkg.MarkerAddress(), deps...); err != nil {
				return nil, err
			}
		}
		if dev := inferred.Dev[pkg.Address]; len(dev) > 0 {
			for _, test := range pkg.ArtifactsOfKind(domain.KindTest) {
				if err := g.AddEdges(test.Address, dev...); err != nil {
					return nil, err
				}
			}
		}
	}

	return g, nil
}

// resolveDir joins a manifest-relative path dependency with the package directory.
// Paths leaving the build root cannot name an entity and are rejected.
func resolveDir(pkgDir, rel string) (string, error) {
	joined := path.Join(pkgDir, strings.ReplaceAll(rel, "\\", "/"))
	if joined == ".." || strings.HasPrefix(joined, "../") || path.IsAbs(rel) {
		err := zerr.With(domain.ErrMissingDependency, "dependency", rel)
		return "", zerr.With(err, "reason", "path leaves the build root")
	}
	return domain.NormalizeDir(joined), nil
}
