package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/porcelain/internal/adapters/config"
	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/porcelain/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func createFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), domain.PrivateFilePerm))
}

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	loader := config.NewLoader(mockLogger)
	loader.Getenv = func(key string) string {
		if key == "XDG_CACHE_HOME" {
			return "/xdg-cache"
		}
		return ""
	}
	return loader
}

func TestLoader_Load_Defaults(t *testing.T) {
	cwd := t.TempDir()

	cfg, err := newLoader(t).Load(cwd)
	require.NoError(t, err)

	assert.Equal(t, cwd, cfg.Root)
	assert.Equal(t, "/xdg-cache/porcelain", cfg.CacheDir)
	assert.Equal(t, "stable", cfg.Rust.Version)
	assert.True(t, cfg.Rust.Tailor)
	assert.Equal(t, "1.26.0", cfg.Rustup.Version)
	assert.Equal(t, domain.Digest{
		SHA256: "0b2f6c8f85a3d02fde2efc0ced4657869d73fccfce59defb4e8d29233116e6db",
		Size:   14293176,
	}, cfg.Rustup.KnownVersions[domain.PlatformLinuxX8664])
	assert.Len(t, cfg.Binstall.KnownVersions, 4)
	assert.True(t, cfg.Binstall.Enabled)
	assert.Equal(t, "1.4.6", cfg.Binstall.Version)
	assert.True(t, cfg.Mtime.Enabled)
	assert.Equal(t, "0.1.1", cfg.Mtime.Version)
	assert.False(t, cfg.Sccache.Enabled)
	assert.Equal(t, []string{"/usr/bin", "/bin", "/usr/local/bin"}, cfg.Sandbox.SearchPaths)
	assert.Nil(t, cfg.ExtraEnv)
}

func TestLoader_Load_WalksUp(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, `
rust:
  version: "1.75.0"
  release: true
  components: [rustfmt, clippy]
  skip_tests: true
mtime:
  enabled: false
sccache:
  enabled: true
clippy:
  args: ["--", "-D", "warnings"]
cache:
  dir: .cache
sandbox:
  search_paths: [/opt/bin]
  keep: true
`)
	nested := filepath.Join(root, "rust", "app", "src")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))

	cfg, err := newLoader(t).Load(nested)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.Root)
	assert.Equal(t, filepath.Join(root, ".cache"), cfg.CacheDir)
	assert.Equal(t, "1.75.0", cfg.Rust.Version)
	assert.True(t, cfg.Rust.Release)
	assert.True(t, cfg.Rust.SkipTests)
	assert.Equal(t, []string{"rustfmt", "clippy"}, cfg.Rust.Components)
	assert.False(t, cfg.Mtime.Enabled)
	assert.Equal(t, "0.1.1", cfg.Mtime.Version, "unset keys keep their defaults")
	assert.True(t, cfg.Sccache.Enabled)
	assert.True(t, cfg.Binstall.Enabled, "disabling one tool must not affect another")
	assert.Equal(t, []string{"--", "-D", "warnings"}, cfg.Clippy.Args)
	assert.Equal(t, []string{"/opt/bin"}, cfg.Sandbox.SearchPaths)
	assert.True(t, cfg.Sandbox.Keep)
}

func TestLoader_Load_EnvFile(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, ".env", "RUST_LOG=debug\nCARGO_NET_OFFLINE=true\n")
	createFile(t, root, domain.ConfigFileName, `
env_file: .env
env:
  CARGO_NET_OFFLINE: "false"
`)

	cfg, err := newLoader(t).Load(root)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"RUST_LOG":          "debug",
		"CARGO_NET_OFFLINE": "false",
	}, cfg.ExtraEnv)
}

func TestLoader_Load_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		contains string
		key      string
		value    string
	}{
		{
			name:     "unknown field",
			content:  "rust:\n  edition: 2021\n",
			contains: domain.ErrConfigInvalid.Error(),
		},
		{
			name:     "invalid version",
			content:  "rust:\n  version: latest\n",
			contains: domain.ErrInvalidToolchainVersion.Error(),
			key:      "version",
			value:    "latest",
		},
		{
			name:     "malformed known version",
			content:  "rustup:\n  known_versions: [\"linux_x86_64|abc|12\"]\n",
			contains: domain.ErrConfigInvalid.Error(),
			key:      "known_version",
			value:    "linux_x86_64|abc|12",
		},
		{
			name:     "unknown platform",
			content:  "binstall:\n  known_versions: [\"windows_x86_64|0b2f6c8f85a3d02fde2efc0ced4657869d73fccfce59defb4e8d29233116e6db|1\"]\n",
			contains: domain.ErrUnsupportedPlatform.Error(),
			key:      "section",
			value:    "binstall",
		},
		{
			name:     "missing env file",
			content:  "env_file: missing.env\n",
			contains: domain.ErrConfigInvalid.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			createFile(t, root, domain.ConfigFileName, tt.content)

			_, err := newLoader(t).Load(root)
			require.ErrorContains(t, err, tt.contains)

			zErr, ok := err.(*zerr.Error)
			require.True(t, ok)
			assert.Equal(t, filepath.Join(root, domain.ConfigFileName), zErr.Metadata()["path"])
			if tt.key != "" {
				assert.Equal(t, tt.value, findMetadata(err, tt.key))
			}
		})
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")

	_, err := newLoader(t).LoadFile(path)
	require.ErrorContains(t, err, domain.ErrConfigNotFound.Error())
}

func TestLoader_Load_WarnsAboutSccacheFromSource(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, "sccache:\n  enabled: true\nbinstall:\n  enabled: false\n")

	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn("sccache is enabled without binstall; it will be compiled from source").Times(1)

	loader := config.NewLoader(mockLogger)
	loader.Getenv = func(string) string { return "/tmp" }

	cfg, err := loader.Load(root)
	require.NoError(t, err)
	assert.False(t, cfg.Binstall.Enabled)
}

// findMetadata searches every layer of a zerr chain for key.
func findMetadata(err error, key string) any {
	for err != nil {
		zErr, ok := err.(*zerr.Error)
		if !ok {
			return nil
		}
		if v, ok := zErr.Metadata()[key]; ok {
			return v
		}
		err = zErr.Unwrap()
	}
	return nil
}
