package goals

import (
	"slices"

	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/porcelain/internal/core/ports"
	"go.trai.ch/zerr"
)

// Closure collects the files a partition needs: the sources of every package reachable from its
// entities in the dependency graph, plus the manifest and lockfile of every workspace reached.
// It tolerates cycles.
type Closure struct {
	root     string
	universe *domain.Universe
	graph    *domain.Graph
	dev      map[domain.Address][]domain.Address
	resolver ports.InputResolver

	workspaceFiles map[domain.Address][]string
}

// NewClosure creates a Closure over a loaded universe. dev maps a package to the libraries it
// reaches only through dev-dependencies.
func NewClosure(
	root string,
	universe *domain.Universe,
	graph *domain.Graph,
	dev map[domain.Address][]domain.Address,
	resolver ports.InputResolver,
) *Closure {
	return &Closure{
		root:           root,
		universe:       universe,
		graph:          graph,
		dev:            dev,
		resolver:       resolver,
		workspaceFiles: make(map[domain.Address][]string),
	}
}

// Files returns the sorted input files reachable from the given addresses.
func (c *Closure) Files(starts ...domain.Address) ([]string, error) {
	seen := make(map[domain.Address]bool)
	packages := make(map[domain.Address]bool)
	queue := slices.Clone(starts)

	var files []string
	for len(queue) > 0 {
		addr := queue[0]
		queue = queue[1:]
		if seen[addr] {
			continue
		}
		seen[addr] = true
		queue = append(queue, c.graph.Dependencies(addr)...)

		if a, ok := c.universe.Artifact(addr); ok {
			pkg, ok := c.universe.PackageOf(a)
			if ok && !packages[pkg.Address] {
				packages[pkg.Address] = true
				files = append(files, pkg.Sources...)
			}
			continue
		}

		if ws, ok := c.universe.Workspace(addr); ok {
			wsFiles, err := c.workspaceInputs(ws)
			if err != nil {
				return nil, err
			}
			files = append(files, wsFiles...)
		}
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}

// PackageFiles returns the inputs of a partition of pkg. Test harnesses also see dev-dependencies.
func (c *Closure) PackageFiles(pkg *domain.PackageEntity, withDev bool) ([]string, error) {
	starts := []domain.Address{pkg.MarkerAddress()}
	if withDev {
		starts = append(starts, c.dev[pkg.Address]...)
	}
	files, err := c.Files(starts...)
	if err != nil {
		return nil, zerr.With(err, "address", pkg.Address.String())
	}
	return files, nil
}

func (c *Closure) workspaceInputs(ws *domain.WorkspaceEntity) ([]string, error) {
	if files, ok := c.workspaceFiles[ws.Address]; ok {
		return files, nil
	}
	files, err := c.resolver.ResolveInputs(c.root, ws.Dir, []string{domain.ManifestFileName, domain.LockfileName})
	if err != nil {
		return nil, zerr.With(err, "address", ws.Address.String())
	}
	c.workspaceFiles[ws.Address] = files
	return files, nil
}

// WithClosure makes every partition see the sources of its transitive dependencies.
// Without a closure a partition sees only the sources of its own package.
func (r *Runner) WithClosure(c *Closure) *Runner {
	r.closure = c
	return r
}

func (r *Runner) packageInputs(pkg *domain.PackageEntity, withDev bool) ([]string, error) {
	if r.closure == nil {
		return pkg.Sources, nil
	}
	return r.closure.PackageFiles(pkg, withDev)
}

func (r *Runner) devOf(pkg *domain.PackageEntity) []domain.Address {
	if r.closure == nil {
		return nil
	}
	return r.closure.dev[pkg.Address]
}
