package domain

import (
	"maps"
	"slices"

	"go.trai.ch/zerr"
)

// Universe is the set of discovered workspaces and expanded packages, indexed by directory.
// It is built once per invocation and treated as immutable afterwards.
type Universe struct {
	workspaces map[Address]*WorkspaceEntity
	packages   map[Address]*PackageEntity
	artifacts  map[Address]*ArtifactEntity
	byDir      map[string][]*ArtifactEntity
	manifests  map[string]*Manifest
}

// NewUniverse creates an empty Universe.
func NewUniverse() *Universe {
	return &Universe{
		workspaces: make(map[Address]*WorkspaceEntity),
		packages:   make(map[Address]*PackageEntity),
		artifacts:  make(map[Address]*ArtifactEntity),
		byDir:      make(map[string][]*ArtifactEntity),
		manifests:  make(map[string]*Manifest),
	}
}

// AddWorkspace registers a workspace entity.
func (u *Universe) AddWorkspace(ws *WorkspaceEntity) error {
	if _, exists := u.workspaces[ws.Address]; exists {
		return zerr.With(ErrEntityAlreadyExists, "address", ws.Address.String())
	}
	u.workspaces[ws.Address] = ws
	return nil
}

// AddPackage registers a package entity together with its artifacts.
func (u *Universe) AddPackage(pkg *PackageEntity) error {
	if _, exists := u.packages[pkg.Address]; exists {
		return zerr.With(ErrEntityAlreadyExists, "address", pkg.Address.String())
	}
	for _, a := range pkg.Artifacts {
		if _, exists := u.artifacts[a.Address]; exists {
			return zerr.With(ErrEntityAlreadyExists, "address", a.Address.String())
		}
	}

	u.packages[pkg.Address] = pkg
	for _, a := range pkg.Artifacts {
		u.artifacts[a.Address] = a
		dir := a.Address.Dir.String()
		u.byDir[dir] = append(u.byDir[dir], a)
	}
	return nil
}

// AddManifest records the parsed manifest of a directory.
func (u *Universe) AddManifest(dir string, m *Manifest) {
	u.manifests[NormalizeDir(dir)] = m
}

// Manifest returns the parsed manifest of a directory.
func (u *Universe) Manifest(dir string) (*Manifest, bool) {
	m, ok := u.manifests[NormalizeDir(dir)]
	return m, ok
}

// Workspaces returns all workspaces ordered by address.
func (u *Universe) Workspaces() []*WorkspaceEntity {
	out := slices.Collect(maps.Values(u.workspaces))
	slices.SortFunc(out, func(a, b *WorkspaceEntity) int { return a.Address.Compare(b.Address) })
	return out
}

// Packages returns all packages ordered by address.
func (u *Universe) Packages() []*PackageEntity {
	out := slices.Collect(maps.Values(u.packages))
	SortPackages(out)
	return out
}

// Workspace returns the workspace with the given address.
func (u *Universe) Workspace(addr Address) (*WorkspaceEntity, bool) {
	ws, ok := u.workspaces[addr]
	return ws, ok
}

// Package returns the package with the given generator address.
func (u *Universe) Package(addr Address) (*PackageEntity, bool) {
	p, ok := u.packages[addr]
	return p, ok
}

// Artifact returns the artifact with the given address.
func (u *Universe) Artifact(addr Address) (*ArtifactEntity, bool) {
	a, ok := u.artifacts[addr]
	return a, ok
}

// Contains reports whether any entity has the given address.
func (u *Universe) Contains(addr Address) bool {
	if _, ok := u.artifacts[addr]; ok {
		return true
	}
	if _, ok := u.workspaces[addr]; ok {
		return true
	}
	_, ok := u.packages[addr]
	return ok
}

// ArtifactsAt returns the artifacts rooted at a directory, ordered by address.
func (u *Universe) ArtifactsAt(dir string) []*ArtifactEntity {
	out := slices.Clone(u.byDir[NormalizeDir(dir)])
	slices.SortFunc(out, func(a, b *ArtifactEntity) int { return a.Address.Compare(b.Address) })
	return out
}

// PackageMarkersAt returns the package marker entities rooted at a directory.
func (u *Universe) PackageMarkersAt(dir string) []*ArtifactEntity {
	var out []*ArtifactEntity
	for _, a := range u.ArtifactsAt(dir) {
		if a.Kind == KindPackage {
			out = append(out, a)
		}
	}
	return out
}

// PackageDirs returns every directory holding at least one package marker, sorted.
func (u *Universe) PackageDirs() []string {
	var dirs []string
	for dir, artifacts := range u.byDir {
		for _, a := range artifacts {
			if a.Kind == KindPackage {
				dirs = append(dirs, dir)
				break
			}
		}
	}
	slices.Sort(dirs)
	return dirs
}

// PackageOf returns the package that generated an artifact.
func (u *Universe) PackageOf(a *ArtifactEntity) (*PackageEntity, bool) {
	return u.Package(a.Package)
}
