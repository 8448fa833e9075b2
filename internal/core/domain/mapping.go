package domain

import (
	"maps"
	"slices"
)

// WorkspaceMember is one resolved member of a workspace.
type WorkspaceMember struct {
	// Path is the member directory relative to the workspace directory ("." for the root).
	Path string

	Package *PackageEntity
	Sources Address
}

// PackageMapping is the resolved join of workspaces and packages.
// Every package appears exactly once: either as a member of one workspace or as loose.
type PackageMapping struct {
	Workspaces map[Address][]WorkspaceMember
	Loose      []*PackageEntity

	owners map[Address]Address
}

// NewPackageMapping creates an empty mapping.
func NewPackageMapping() *PackageMapping {
	return &PackageMapping{
		Workspaces: make(map[Address][]WorkspaceMember),
		owners:     make(map[Address]Address),
	}
}

// AddMember records pkg as a member of the workspace ws.
func (m *PackageMapping) AddMember(ws Address, member WorkspaceMember) {
	m.Workspaces[ws] = append(m.Workspaces[ws], member)
	m.owners[member.Package.Address] = ws
}

// EnsureWorkspace makes sure a workspace without members still appears in the mapping.
func (m *PackageMapping) EnsureWorkspace(ws Address) {
	if _, ok := m.Workspaces[ws]; !ok {
		m.Workspaces[ws] = nil
	}
}

// OwnerOf returns the workspace that owns a package, if any.
func (m *PackageMapping) OwnerOf(pkg Address) (Address, bool) {
	ws, ok := m.owners[pkg]
	return ws, ok
}

// Members returns the members of a workspace.
func (m *PackageMapping) Members(ws Address) []WorkspaceMember {
	return m.Workspaces[ws]
}

// WorkspaceAddresses returns the workspaces of the mapping, sorted.
func (m *PackageMapping) WorkspaceAddresses() []Address {
	addrs := slices.Collect(maps.Keys(m.Workspaces))
	slices.SortFunc(addrs, Address.Compare)
	return addrs
}

// Size returns the number of packages in the mapping.
func (m *PackageMapping) Size() int {
	return len(m.owners) + len(m.Loose)
}
