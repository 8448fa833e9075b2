package config

import "slices"

const (
	// DefaultRustVersion is the toolchain installed when none is configured.
	DefaultRustVersion = "stable"
	// DefaultRustupVersion is the pinned toolchain-manager installer release.
	DefaultRustupVersion = "1.26.0"
	// DefaultBinstallVersion is the pinned prebuilt-archive installer release.
	DefaultBinstallVersion = "1.4.6"
	// DefaultSccacheVersion is the compiler-invocation cache installed when enabled.
	DefaultSccacheVersion = "0.7.4"
	// DefaultMtimeVersion is the timestamp restoration helper installed when enabled.
	DefaultMtimeVersion = "0.1.1"
)

// DefaultSearchPaths are the directories searched for system binaries.
var DefaultSearchPaths = []string{"/usr/bin", "/bin", "/usr/local/bin"}

// DefaultRustupKnownVersions are the digests of rustup-init 1.26.0.
var DefaultRustupKnownVersions = []string{
	"linux_arm64|673e336c81c65e6b16dcdede33f4cc9ed0f08bde1dbe7a935f113605292dc800|14131368",
	"linux_x86_64|0b2f6c8f85a3d02fde2efc0ced4657869d73fccfce59defb4e8d29233116e6db|14293176",
	"macos_arm64|ed299a8fe762dc28161a99a03cf62836977524ad557ad70e13882d2f375d3983|8000713",
	"macos_x86_64|f6d1a9fac1a0d0802d87c254f02369a79973bc8c55aa0016d34af4fcdbd67822|8670640",
}

// DefaultBinstallKnownVersions are the digests of the cargo-binstall 1.4.6 release archives.
var DefaultBinstallKnownVersions = []string{
	"linux_arm64|b321b6ee360d39465027c92c328e31f77df3c8f119fede80962152fff4ec3d0c|6784880",
	"linux_x86_64|ac755e512686b0d6d30fb3894f148cbe1e99a99afd77d2c62e05398802cf87f7|7064830",
	"macos_arm64|dd6a100437d67d71117687dc24a8f37a116916823e7600c9fce3462145ed0a1a|6331670",
	"macos_x86_64|522d437f4f4bebf47c1c6bb9194fb28fd61c3e7e550aa8ff2b70b4b7eed8f209|6800984",
}

// Defaults returns the configuration used when porcelain.yaml is absent.
func Defaults() File {
	return File{
		Rust: RustDTO{Version: DefaultRustVersion, Tailor: boolPtr(true)},
		Rustup: DownloadDTO{
			Version:       DefaultRustupVersion,
			KnownVersions: slices.Clone(DefaultRustupKnownVersions),
		},
		Binstall: BinstallDTO{
			DownloadDTO: DownloadDTO{
				Version:       DefaultBinstallVersion,
				KnownVersions: slices.Clone(DefaultBinstallKnownVersions),
			},
			Enabled: boolPtr(true),
		},
		Sccache: ToolDTO{Enabled: boolPtr(false), Version: DefaultSccacheVersion},
		Mtime:   ToolDTO{Enabled: boolPtr(true), Version: DefaultMtimeVersion},
		Sandbox: SandboxDTO{SearchPaths: slices.Clone(DefaultSearchPaths)},
	}
}

// boolPtr allocates separately for every field; the decoder writes through existing pointers.
func boolPtr(b bool) *bool {
	return &b
}
