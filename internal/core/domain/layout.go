package domain

import "path/filepath"

const (
	// ConfigFileName is the name of the optional build configuration file.
	ConfigFileName = "porcelain.yaml"

	// ManifestFileName is the name of the per-directory package manifest.
	ManifestFileName = "Cargo.toml"

	// LockfileName is the name of the lockfile that sits next to a manifest.
	LockfileName = "Cargo.lock"

	// DistDirName is the build-root directory that receives packaged binaries.
	DistDirName = "dist"

	// WrapperScriptName is the name of the generated script every sandboxed process runs.
	WrapperScriptName = "run.sh"

	// ShimsDirName is the sandbox directory holding links to system binaries.
	ShimsDirName = "shims"

	// ChrootPlaceholder is replaced with the absolute sandbox directory at execution time.
	ChrootPlaceholder = "{chroot}"

	// CachePathPlaceholder is replaced in output templates with the remapped target directory.
	CachePathPlaceholder = "{cache_path}"

	// DefaultTargetDir is the compiler output directory used when no cache namespace is given.
	DefaultTargetDir = "target"

	// WorkspaceEntityName is the entity name given to every workspace.
	WorkspaceEntityName = "workspace"

	// LockFileName is the name of the advisory lock guarding toolchain installs.
	LockFileName = "rustup.lock"

	// DownloadsDirName holds verified installer downloads.
	DownloadsDirName = "downloads"

	// NamedCachesDirName holds the append-only caches mounted into sandboxes.
	NamedCachesDirName = "named_caches"

	// ToolsDirName holds installed helper tools.
	ToolsDirName = "tools"

	// MetadataDirName holds cached package metadata.
	MetadataDirName = "metadata"

	// SandboxesDirName holds per-process sandbox directories.
	SandboxesDirName = "sandboxes"

	// OutputsDirName holds outputs captured from finished processes.
	OutputsDirName = "outputs"

	// StampsDirName holds completion markers for installs.
	StampsDirName = ".porcelain-stamps"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// ExecPerm is the permission for downloaded executables (rwxr-xr-x).
	ExecPerm = 0o755

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// NamedCache identifies an append-only cache and the sandbox-relative path it is mounted at.
type NamedCache struct {
	Name string
	Path string
}

var (
	// RustupCache holds the toolchain manager home.
	RustupCache = NamedCache{Name: "rustup", Path: ".rustup"}

	// CargoCache holds the package manager home.
	CargoCache = NamedCache{Name: "cargo", Path: ".cargo"}

	// TargetCache holds incremental compiler output shared between packages.
	TargetCache = NamedCache{Name: "ctc", Path: ".cargo-target-cache"}

	// SccacheCache holds compiler-invocation cache entries.
	SccacheCache = NamedCache{Name: "sccache", Path: ".sccache"}
)

// NamedCachePath returns the host directory backing a named cache.
func NamedCachePath(cacheRoot string, c NamedCache) string {
	return filepath.Join(cacheRoot, NamedCachesDirName, c.Name)
}

// InstallLockPath returns the path of the machine-wide install lock.
func InstallLockPath(cacheRoot string) string {
	return filepath.Join(cacheRoot, LockFileName)
}

// MetadataStorePath returns the directory of the metadata store.
func MetadataStorePath(cacheRoot string) string {
	return filepath.Join(cacheRoot, MetadataDirName)
}

// ToolInstallPath returns the directory a helper tool is installed into.
func ToolInstallPath(cacheRoot, name, version string) string {
	return filepath.Join(cacheRoot, ToolsDirName, name+"-"+version)
}

// SandboxRootPath returns the parent directory of all sandboxes.
func SandboxRootPath(cacheRoot string) string {
	return filepath.Join(cacheRoot, SandboxesDirName)
}

// OutputsPath returns the directory holding the captured outputs of one process.
func OutputsPath(cacheRoot, id string) string {
	return filepath.Join(cacheRoot, OutputsDirName, id)
}
