package domain

// Manifest is the parsed form of a Cargo.toml. Only the fields the build graph needs are kept.
type Manifest struct {
	// Path is the build-root relative path of the manifest file.
	Path string

	Package   *PackageSection
	Workspace *WorkspaceSection

	Dependencies      map[string]Dependency
	DevDependencies   map[string]Dependency
	BuildDependencies map[string]Dependency

	// Target holds platform-specific dependency tables keyed by cfg expression.
	Target map[string]TargetDependencies
}

// PackageSection is the [package] table.
type PackageSection struct {
	Name    string
	Version string
}

// WorkspaceSection is the [workspace] table.
type WorkspaceSection struct {
	Members []string
	Exclude []string
}

// TargetDependencies holds the dependency tables of a [target.<cfg>] section.
type TargetDependencies struct {
	Dependencies      map[string]Dependency
	DevDependencies   map[string]Dependency
	BuildDependencies map[string]Dependency
}

// Dependency is one entry of a dependency table.
type Dependency struct {
	Version   string
	Path      string
	Git       string
	Package   string
	Workspace bool
	Optional  bool
}

// IsPath reports whether the dependency is resolved from the local filesystem.
func (d Dependency) IsPath() bool {
	return d.Path != ""
}

// PathDependencies returns every local path declared across all dependency tables.
// Entries without a path are registry or git references and are not returned.
func (m *Manifest) PathDependencies() []string {
	return append(m.BuildPathDependencies(), m.DevPathDependencies()...)
}

// BuildPathDependencies returns the local paths of the normal and build dependency tables,
// the ones needed to compile the package itself.
func (m *Manifest) BuildPathDependencies() []string {
	paths := pathsOf(m.Dependencies, m.BuildDependencies)
	for _, t := range m.Target {
		paths = append(paths, pathsOf(t.Dependencies, t.BuildDependencies)...)
	}
	return paths
}

// DevPathDependencies returns the local paths of the dev-dependency tables.
// They are only needed by test harnesses and may point back at a dependent package.
func (m *Manifest) DevPathDependencies() []string {
	paths := pathsOf(m.DevDependencies)
	for _, t := range m.Target {
		paths = append(paths, pathsOf(t.DevDependencies)...)
	}
	return paths
}

func pathsOf(tables ...map[string]Dependency) []string {
	var paths []string
	for _, table := range tables {
		for _, dep := range table {
			if dep.IsPath() {
				paths = append(paths, dep.Path)
			}
		}
	}
	return paths
}

// HasPackage reports whether the manifest declares a [package] section.
func (m *Manifest) HasPackage() bool {
	return m.Package != nil
}

// HasWorkspace reports whether the manifest declares a [workspace] section.
func (m *Manifest) HasWorkspace() bool {
	return m.Workspace != nil
}
