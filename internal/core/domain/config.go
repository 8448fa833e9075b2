package domain

// Config is the resolved build configuration.
type Config struct {
	// Root is the absolute build root. Entity directories are relative to it.
	Root string

	// CacheDir holds named caches, downloads, installed tools and sandboxes.
	CacheDir string

	Rust     RustOptions
	Rustup   DownloadOptions
	Binstall BinstallOptions
	Sccache  ToolOptions
	Mtime    ToolOptions
	Clippy   ClippyOptions
	Sandbox  SandboxOptions

	// ExtraEnv is passed to every sandboxed process and wins over computed values.
	ExtraEnv map[string]string
}

// RustOptions configures the toolchain and the goals.
type RustOptions struct {
	Version    string
	Components []string
	Release    bool
	Tailor     bool
	SkipFmt    bool
	SkipLint   bool
	SkipTests  bool
}

// DownloadOptions pins a downloadable executable per platform.
type DownloadOptions struct {
	Version       string
	KnownVersions map[Platform]Digest
}

// BinstallOptions configures installing helper tools from prebuilt release archives.
type BinstallOptions struct {
	DownloadOptions
	Enabled bool
}

// ToolOptions configures one helper tool.
type ToolOptions struct {
	Enabled bool
	Version string
}

// ClippyOptions configures the lint goal.
type ClippyOptions struct {
	Args []string
	Skip bool
}

// SandboxOptions configures process construction and execution.
type SandboxOptions struct {
	SearchPaths []string
	Keep        bool
}

// ToolchainRequest returns the toolchain request for the configured version and a target.
func (c *Config) ToolchainRequest(target string) ToolchainRequest {
	return NewToolchainRequest(c.Rust.Version, target, c.Rust.Components...)
}
