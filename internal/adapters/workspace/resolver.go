// Package workspace assigns discovered packages to the workspaces that own them.
package workspace

import (
	"path"
	"slices"
	"strings"

	fsadapter "go.trai.ch/porcelain/internal/adapters/fs"
	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/zerr"
)

// Resolver builds package mappings from a universe.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve partitions the packages of the universe into workspace members and loose packages.
// Workspaces are processed in address order. Every package ends up in exactly one of the two sets;
// a package claimed by two workspaces, or a member path holding two package markers, is an error.
func (r *Resolver) Resolve(universe *domain.Universe) (*domain.PackageMapping, error) {
	mapping := domain.NewPackageMapping()
	packageDirs := universe.PackageDirs()

	for _, ws := range universe.Workspaces() {
		mapping.EnsureWorkspace(ws.Address)

		for _, dir := range memberDirs(ws, packageDirs) {
			markers := universe.PackageMarkersAt(dir)
			if len(markers) == 0 {
				continue
			}
			if len(markers) > 1 {
				err := zerr.With(domain.ErrAmbiguousWorkspaceMember, "workspace", ws.Address.String())
				err = zerr.With(err, "member", dir)
				return nil, zerr.With(err, "addresses", joinAddresses(markers))
			}

			pkg, ok := universe.PackageOf(markers[0])
			if !ok {
				return nil, zerr.With(domain.ErrEntityNotFound, "address", markers[0].Package.String())
			}

			if owner, claimed := mapping.OwnerOf(pkg.Address); claimed {
				if owner == ws.Address {
					continue
				}
				err := zerr.With(domain.ErrAmbiguousWorkspaceMember, "member", dir)
				return nil, zerr.With(err, "addresses", owner.String()+", "+ws.Address.String())
			}

			mapping.AddMember(ws.Address, domain.WorkspaceMember{
				Path:    relativeTo(ws.Dir, dir),
				Package: pkg,
				Sources: pkg.SourcesAddress(),
			})
		}
	}

	for _, pkg := range universe.Packages() {
		if _, owned := mapping.OwnerOf(pkg.Address); !owned {
			mapping.Loose = append(mapping.Loose, pkg)
		}
	}
	for _, members := range mapping.Workspaces {
		slices.SortFunc(members, func(a, b domain.WorkspaceMember) int { return strings.Compare(a.Path, b.Path) })
	}
	return mapping, nil
}

// memberDirs returns the package directories selected by a workspace's member and exclude globs.
// A workspace root that is itself a package is always a member.
func memberDirs(ws *domain.WorkspaceEntity, packageDirs []string) []string {
	var out []string
	for _, dir := range packageDirs {
		if ws.RootIsPackage && dir == ws.Dir {
			out = append(out, dir)
			continue
		}
		if !matchesAny(ws.Dir, ws.Members, dir) || excluded(ws.Dir, ws.Exclude, dir) {
			continue
		}
		out = append(out, dir)
	}
	return out
}

func matchesAny(base string, patterns []string, dir string) bool {
	return slices.ContainsFunc(patterns, func(p string) bool {
		return fsadapter.MatchGlob(domain.NormalizeDir(path.Join(base, p)), dir)
	})
}

// excluded reports whether dir matches an exclude glob or lies below an excluded directory.
func excluded(base string, patterns []string, dir string) bool {
	return slices.ContainsFunc(patterns, func(p string) bool {
		ex := domain.NormalizeDir(path.Join(base, p))
		return fsadapter.MatchGlob(ex, dir) || strings.HasPrefix(dir, ex+"/")
	})
}

func relativeTo(base, dir string) string {
	if base == dir {
		return "."
	}
	if base == "" {
		return dir
	}
	return strings.TrimPrefix(dir, base+"/")
}

func joinAddresses(artifacts []*domain.ArtifactEntity) string {
	addrs := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		addrs = append(addrs, a.Address.String())
	}
	return strings.Join(addrs, ", ")
}
