package config

// File represents the structure of the porcelain.yaml configuration file.
type File struct {
	Rust     RustDTO           `yaml:"rust"`
	Rustup   DownloadDTO       `yaml:"rustup"`
	Binstall BinstallDTO       `yaml:"binstall"`
	Sccache  ToolDTO           `yaml:"sccache"`
	Mtime    ToolDTO           `yaml:"mtime"`
	Clippy   ClippyDTO         `yaml:"clippy"`
	Sandbox  SandboxDTO        `yaml:"sandbox"`
	Cache    CacheDTO          `yaml:"cache"`
	EnvFile  string            `yaml:"env_file"`
	Env      map[string]string `yaml:"env"`
}

// RustDTO configures the toolchain and the goals.
type RustDTO struct {
	Version    string   `yaml:"version"`
	Components []string `yaml:"components"`
	Release    bool     `yaml:"release"`
	Tailor     *bool    `yaml:"tailor"`
	SkipFmt    bool     `yaml:"skip_fmt"`
	SkipLint   bool     `yaml:"skip_lint"`
	SkipTests  bool     `yaml:"skip_tests"`
}

// DownloadDTO pins a downloadable executable.
// KnownVersions entries have the form "<platform>|<sha256>|<size>".
type DownloadDTO struct {
	Version       string   `yaml:"version"`
	KnownVersions []string `yaml:"known_versions"`
}

// BinstallDTO configures the prebuilt-archive installer for helper tools.
type BinstallDTO struct {
	DownloadDTO `yaml:",inline"`
	Enabled     *bool `yaml:"enabled"`
}

// ToolDTO configures one helper tool.
type ToolDTO struct {
	Enabled *bool  `yaml:"enabled"`
	Version string `yaml:"version"`
}

// ClippyDTO configures the lint goal.
type ClippyDTO struct {
	Args []string `yaml:"args"`
	Skip bool     `yaml:"skip"`
}

// SandboxDTO configures process construction and execution.
type SandboxDTO struct {
	SearchPaths []string `yaml:"search_paths"`
	Keep        bool     `yaml:"keep"`
}

// CacheDTO configures where persistent state lives.
type CacheDTO struct {
	Dir string `yaml:"dir"`
}
