package domain

import "go.trai.ch/zerr"

var (
	// ErrUnsupportedPlatform is returned when the host OS/CPU pair has no known toolchain download.
	ErrUnsupportedPlatform = zerr.New("unsupported platform")

	// ErrIntegrity is returned when a downloaded file does not match its expected digest or size.
	ErrIntegrity = zerr.New("integrity check failed")

	// ErrDownloadFailed is returned when a file could not be fetched.
	ErrDownloadFailed = zerr.New("download failed")

	// ErrToolchainInstall is returned when the installer or a toolchain manager step fails.
	ErrToolchainInstall = zerr.New("toolchain install failed")

	// ErrToolInstall is returned when a helper tool could not be installed.
	ErrToolInstall = zerr.New("tool install failed")

	// ErrLockFailed is returned when the install lock file cannot be opened or locked.
	ErrLockFailed = zerr.New("failed to acquire install lock")

	// ErrInvalidToolchainVersion is returned when a requested toolchain version cannot be parsed.
	ErrInvalidToolchainVersion = zerr.New("invalid toolchain version")

	// ErrMissingSystemBinary is returned when a required system tool is absent from the search path.
	ErrMissingSystemBinary = zerr.New("missing system binary")

	// ErrInvalidScript is returned when a generated wrapper script does not parse.
	ErrInvalidScript = zerr.New("invalid wrapper script")

	// ErrAmbiguousWorkspaceMember is returned when a workspace member path resolves to more than
	// one package, or when one package is claimed by more than one workspace.
	ErrAmbiguousWorkspaceMember = zerr.New("ambiguous workspace member")

	// ErrMalformedManifest is returned when a manifest cannot be parsed.
	ErrMalformedManifest = zerr.New("malformed manifest")

	// ErrMalformedMetadata is returned when the toolchain metadata output cannot be interpreted.
	ErrMalformedMetadata = zerr.New("malformed package metadata")

	// ErrProcessFailed is returned when a sandboxed process exits with a non-zero code.
	ErrProcessFailed = zerr.New("process failed")

	// ErrSandboxSetup is returned when the sandbox directory could not be materialized.
	ErrSandboxSetup = zerr.New("failed to prepare sandbox")

	// ErrMissingOutput is returned when a process did not produce a declared output.
	ErrMissingOutput = zerr.New("declared output missing")

	// ErrGoalFailed is returned when at least one partition of a goal failed.
	ErrGoalFailed = zerr.New("goal failed")

	// ErrEntityAlreadyExists is returned when an entity address is registered twice.
	ErrEntityAlreadyExists = zerr.New("entity already exists")

	// ErrEntityNotFound is returned when a requested entity is not in the universe.
	ErrEntityNotFound = zerr.New("entity not found")

	// ErrMissingDependency is returned when an edge points at an address that is not in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrConfigNotFound is returned when an explicitly requested configuration file does not exist.
	ErrConfigNotFound = zerr.New("configuration file not found")

	// ErrConfigInvalid is returned when the configuration file cannot be decoded or validated.
	ErrConfigInvalid = zerr.New("invalid configuration")

	// ErrStoreReadFailed is returned when reading from the metadata store fails.
	ErrStoreReadFailed = zerr.New("failed to read from store")

	// ErrStoreWriteFailed is returned when writing to the metadata store fails.
	ErrStoreWriteFailed = zerr.New("failed to write to store")

	// ErrStoreUnmarshalFailed is returned when a stored record cannot be decoded.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal stored metadata")

	// ErrInvalidAddress is returned when an address cannot be parsed.
	ErrInvalidAddress = zerr.New("invalid address")
)
