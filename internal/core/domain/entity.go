package domain

import (
	"slices"
)

// ArtifactType is the tagged variant of a build artifact reported by the toolchain metadata.
type ArtifactType int

const (
	// ArtifactLibrary is a library crate (lib, cdylib, rlib, ...).
	ArtifactLibrary ArtifactType = iota + 1
	// ArtifactBinary is an executable.
	ArtifactBinary
	// ArtifactTest is an integration test.
	ArtifactTest
)

func (t ArtifactType) String() string {
	switch t {
	case ArtifactLibrary:
		return "library"
	case ArtifactBinary:
		return "binary"
	case ArtifactTest:
		return "test"
	default:
		return "unknown"
	}
}

// Artifact is one build artifact of a package.
type Artifact struct {
	Type    ArtifactType `json:"type"`
	Name    string       `json:"name"`
	SrcPath string       `json:"src_path,omitzero"`
}

// PackageMetadata is the parsed shape of a package as reported by the toolchain.
type PackageMetadata struct {
	Name      string     `json:"name"`
	Version   string     `json:"version,omitzero"`
	Artifacts []Artifact `json:"artifacts"`
}

// ArtifactsOf returns the artifacts of the given type, in declaration order.
func (m *PackageMetadata) ArtifactsOf(t ArtifactType) []Artifact {
	var out []Artifact
	for _, a := range m.Artifacts {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

// ArtifactKind classifies the entities generated from one package.
type ArtifactKind string

const (
	// KindSources owns the package's source files.
	KindSources ArtifactKind = "sources"
	// KindPackage marks the package itself; workspaces resolve members to it.
	KindPackage ArtifactKind = "package"
	// KindLibrary is the package's library artifact.
	KindLibrary ArtifactKind = "library"
	// KindBinary is one executable artifact.
	KindBinary ArtifactKind = "binary"
	// KindTest is one integration test artifact.
	KindTest ArtifactKind = "test"
)

// PackageGeneratorName is the entity name of every package generator.
const PackageGeneratorName = "cargo_package"

// ArtifactAddress returns the address of a generated artifact.
// Binaries and tests are prefixed so they never collide with each other or the fixed kinds.
func ArtifactAddress(dir string, kind ArtifactKind, name string) Address {
	switch kind {
	case KindBinary:
		return NewAddress(dir, "bin-"+name)
	case KindTest:
		return NewAddress(dir, "test-"+name)
	default:
		return NewAddress(dir, string(kind))
	}
}

// ArtifactEntity is one generated child of a package entity.
type ArtifactEntity struct {
	Address      Address
	Kind         ArtifactKind
	Name         string
	Package      Address
	Dependencies []Address
}

// PackageEntity is generated from a directory holding a package manifest.
type PackageEntity struct {
	Address Address
	Dir     string

	// Name is the package name declared by the manifest.
	Name string

	Sources            []string
	OutputPathTemplate string
	SkipTests          bool

	Artifacts []*ArtifactEntity
}

// DefaultPackageSources are the globs owned by every package unless overridden.
var DefaultPackageSources = []string{
	ManifestFileName,
	LockfileName,
	"build.rs",
	"src/**/*",
	"tests/**/*.rs",
	"examples/**/*",
	"benches/**/*",
}

// DefaultOutputPathTemplate is where built binaries are declared.
const DefaultOutputPathTemplate = CachePathPlaceholder + "/{profile}/{name}"

// ArtifactsOfKind returns the package's artifacts of the given kind.
func (p *PackageEntity) ArtifactsOfKind(kind ArtifactKind) []*ArtifactEntity {
	var out []*ArtifactEntity
	for _, a := range p.Artifacts {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// SourcesAddress returns the address of the package's sources entity.
func (p *PackageEntity) SourcesAddress() Address {
	return ArtifactAddress(p.Dir, KindSources, "")
}

// MarkerAddress returns the address of the package's marker entity.
func (p *PackageEntity) MarkerAddress() Address {
	return ArtifactAddress(p.Dir, KindPackage, "")
}

// Library returns the library artifact, if the package has one.
func (p *PackageEntity) Library() *ArtifactEntity {
	libs := p.ArtifactsOfKind(KindLibrary)
	if len(libs) == 0 {
		return nil
	}
	return libs[0]
}

// ManifestPath returns the build-root relative path of the package manifest.
func (p *PackageEntity) ManifestPath() string {
	return ManifestPathFor(p.Dir)
}

// WorkspaceEntity is generated from a manifest with a [workspace] section.
type WorkspaceEntity struct {
	Address Address
	Dir     string
	Members []string
	Exclude []string

	// RootIsPackage records that the workspace manifest also declares a package.
	RootIsPackage bool
}

// ManifestPath returns the build-root relative path of the workspace manifest.
func (w *WorkspaceEntity) ManifestPath() string {
	return ManifestPathFor(w.Dir)
}

// ManifestPathFor joins a directory with the manifest file name.
func ManifestPathFor(dir string) string {
	if dir == "" {
		return ManifestFileName
	}
	return dir + "/" + ManifestFileName
}

// LockfilePathFor joins a directory with the lockfile name.
func LockfilePathFor(dir string) string {
	if dir == "" {
		return LockfileName
	}
	return dir + "/" + LockfileName
}

// PutativeKind describes what a discovered manifest should become.
type PutativeKind string

const (
	// PutativePackage asks for a package entity.
	PutativePackage PutativeKind = "package"
	// PutativeWorkspace asks for a workspace entity.
	PutativeWorkspace PutativeKind = "workspace"
)

// PutativeEntity is a discovery result that has not been expanded yet.
type PutativeEntity struct {
	Kind     PutativeKind
	Dir      string
	Name     string
	Manifest *Manifest
}

// SortPackages orders packages by address.
func SortPackages(pkgs []*PackageEntity) {
	slices.SortFunc(pkgs, func(a, b *PackageEntity) int { return a.Address.Compare(b.Address) })
}
