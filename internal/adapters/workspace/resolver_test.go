package workspace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/porcelain/internal/adapters/discovery"
	"go.trai.ch/porcelain/internal/adapters/workspace"
	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/zerr"
)

func newPackage(dir, name string) *domain.PackageEntity {
	return discovery.NewPackageEntity(dir, &domain.PackageMetadata{
		Name:      name,
		Artifacts: []domain.Artifact{{Type: domain.ArtifactLibrary, Name: name}},
	}, nil, false)
}

func newWorkspace(dir string, rootIsPackage bool, members []string, exclude ...string) *domain.WorkspaceEntity {
	return &domain.WorkspaceEntity{
		Address:       domain.NewAddress(dir, domain.WorkspaceEntityName),
		Dir:           dir,
		Members:       members,
		Exclude:       exclude,
		RootIsPackage: rootIsPackage,
	}
}

func newUniverse(t *testing.T, workspaces []*domain.WorkspaceEntity, pkgs ...*domain.PackageEntity) *domain.Universe {
	t.Helper()
	u := domain.NewUniverse()
	for _, ws := range workspaces {
		require.NoError(t, u.AddWorkspace(ws))
	}
	for _, pkg := range pkgs {
		require.NoError(t, u.AddPackage(pkg))
	}
	return u
}

func memberPaths(members []domain.WorkspaceMember) []string {
	var out []string
	for _, m := range members {
		out = append(out, m.Path)
	}
	return out
}

func TestResolver_Resolve_Partitions(t *testing.T) {
	root := newWorkspace("", false, []string{"crates/*"}, "crates/experimental")
	nested := newWorkspace("tools", true, []string{"gen"})
	u := newUniverse(t, []*domain.WorkspaceEntity{root, nested},
		newPackage("crates/a", "a"),
		newPackage("crates/b", "b"),
		newPackage("crates/experimental", "experimental"),
		newPackage("crates/experimental/inner", "inner"),
		newPackage("standalone", "standalone"),
		newPackage("tools", "tools"),
		newPackage("tools/gen", "gen"),
	)

	mapping, err := workspace.NewResolver().Resolve(u)
	require.NoError(t, err)

	assert.Equal(t, []string{"crates/a", "crates/b"}, memberPaths(mapping.Members(root.Address)))
	assert.Equal(t, []string{".", "gen"}, memberPaths(mapping.Members(nested.Address)))

	var loose []string
	for _, pkg := range mapping.Loose {
		loose = append(loose, pkg.Dir)
	}
	assert.Equal(t, []string{"crates/experimental", "crates/experimental/inner", "standalone"}, loose)

	// Every package appears exactly once.
	assert.Equal(t, len(u.Packages()), mapping.Size())
	for _, pkg := range u.Packages() {
		_, owned := mapping.OwnerOf(pkg.Address)
		assert.NotEqual(t, owned, containsPackage(mapping.Loose, pkg), pkg.Address.String())
	}

	member := mapping.Members(root.Address)[0]
	assert.Equal(t, "crates/a:sources", member.Sources.String())
	assert.Equal(t, "a", member.Package.Name)
}

func containsPackage(pkgs []*domain.PackageEntity, pkg *domain.PackageEntity) bool {
	for _, p := range pkgs {
		if p == pkg {
			return true
		}
	}
	return false
}

func TestResolver_Resolve_DotMember(t *testing.T) {
	ws := newWorkspace("", true, []string{"."})
	u := newUniverse(t, []*domain.WorkspaceEntity{ws}, newPackage("", "hello"))

	mapping, err := workspace.NewResolver().Resolve(u)
	require.NoError(t, err)

	members := mapping.Members(ws.Address)
	require.Len(t, members, 1)
	assert.Equal(t, ".", members[0].Path)
	assert.Equal(t, "", members[0].Package.Dir)
	assert.Empty(t, mapping.Loose)
}

func TestResolver_Resolve_PlaceholderMember(t *testing.T) {
	ws := newWorkspace("", false, []string{"crates/missing", "crates/a"})
	u := newUniverse(t, []*domain.WorkspaceEntity{ws}, newPackage("crates/a", "a"))

	mapping, err := workspace.NewResolver().Resolve(u)
	require.NoError(t, err)
	assert.Equal(t, []string{"crates/a"}, memberPaths(mapping.Members(ws.Address)))
}

func TestResolver_Resolve_EmptyWorkspace(t *testing.T) {
	ws := newWorkspace("virtual", false, nil)
	u := newUniverse(t, []*domain.WorkspaceEntity{ws}, newPackage("crates/a", "a"))

	mapping, err := workspace.NewResolver().Resolve(u)
	require.NoError(t, err)
	assert.Equal(t, []domain.Address{ws.Address}, mapping.WorkspaceAddresses())
	assert.Empty(t, mapping.Members(ws.Address))
	assert.Len(t, mapping.Loose, 1)
}

func TestResolver_Resolve_OverlappingWorkspaces(t *testing.T) {
	outer := newWorkspace("", false, []string{"crates/*"})
	inner := newWorkspace("crates", false, []string{"a"})
	u := newUniverse(t, []*domain.WorkspaceEntity{outer, inner}, newPackage("crates/a", "a"))

	_, err := workspace.NewResolver().Resolve(u)
	require.ErrorContains(t, err, domain.ErrAmbiguousWorkspaceMember.Error())

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, "crates/a", zErr.Metadata()["member"])
	assert.Equal(t, "//:workspace, crates:workspace", zErr.Metadata()["addresses"])
}

func TestResolver_Resolve_TwoMarkersAtOnePath(t *testing.T) {
	first := newPackage("crates/a", "a")
	second := &domain.PackageEntity{
		Address: domain.NewAddress("crates/a", "legacy_package"),
		Dir:     "crates/a",
		Name:    "a-legacy",
		Artifacts: []*domain.ArtifactEntity{{
			Address: domain.NewAddress("crates/a", "legacy-marker"),
			Kind:    domain.KindPackage,
			Name:    "a-legacy",
			Package: domain.NewAddress("crates/a", "legacy_package"),
		}},
	}
	ws := newWorkspace("", false, []string{"crates/a"})
	u := newUniverse(t, []*domain.WorkspaceEntity{ws}, first, second)

	_, err := workspace.NewResolver().Resolve(u)
	require.ErrorContains(t, err, domain.ErrAmbiguousWorkspaceMember.Error())

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, "crates/a:legacy-marker, crates/a:package", zErr.Metadata()["addresses"])
	assert.Equal(t, "//:workspace", zErr.Metadata()["workspace"])
}
