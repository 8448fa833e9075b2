package sandbox_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/porcelain/internal/adapters/sandbox"
	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/zerr"
	"mvdan.cc/sh/v3/syntax"
)

// fakeBinDir creates executables for every system binary except the skipped ones.
func fakeBinDir(t *testing.T, skip ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range sandbox.SystemBinaries {
		if contains(skip, name) {
			continue
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), domain.ExecPerm))
	}
	return dir
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func newBuilder(t *testing.T, binDir string, extraEnv map[string]string) *sandbox.Builder {
	t.Helper()
	cfg := &domain.Config{
		Root:     t.TempDir(),
		CacheDir: t.TempDir(),
		Sandbox:  domain.SandboxOptions{SearchPaths: []string{"/nonexistent", binDir}},
		ExtraEnv: extraEnv,
	}
	b := sandbox.NewBuilder(cfg, sandbox.NewLocator())
	return sandbox.NewBuilderForTest(b, func(int) int { return 1234 }, "proc-1")
}

func script(t *testing.T, spec *domain.ProcessSpec) string {
	t.Helper()
	content, ok := spec.GeneratedFiles[domain.WrapperScriptName]
	require.True(t, ok)

	_, err := syntax.NewParser().Parse(strings.NewReader(string(content)), domain.WrapperScriptName)
	require.NoError(t, err)
	return string(content)
}

func TestLocator_Find(t *testing.T) {
	dir := fakeBinDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain"), []byte("x"), domain.FilePerm))

	l := sandbox.NewLocator()
	got, err := l.Find("cc", []string{"", "/nonexistent", dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cc"), got)

	_, err = l.Find("plain", []string{dir})
	require.ErrorContains(t, err, domain.ErrMissingSystemBinary.Error())

	_, err = l.Find("gcc-99", []string{"/a", "/b"})
	require.ErrorContains(t, err, domain.ErrMissingSystemBinary.Error())
	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, "gcc-99", zErr.Metadata()["binary"])
	assert.Equal(t, "/a:/b", zErr.Metadata()["search_path"])
}

func TestLocator_FindAll_UsesStat(t *testing.T) {
	var seen []string
	l := sandbox.NewLocatorWithStat(func(p string) (os.FileInfo, error) {
		seen = append(seen, p)
		return nil, os.ErrNotExist
	})

	_, err := l.FindAll([]string{"cc", "ld"}, []string{"/usr/bin"})
	require.ErrorContains(t, err, domain.ErrMissingSystemBinary.Error())
	assert.Equal(t, []string{"/usr/bin/cc"}, seen)
}

func TestBuilder_Build_Defaults(t *testing.T) {
	binDir := fakeBinDir(t)
	b := newBuilder(t, binDir, nil)
	tc := domain.NewToolchain("1.75.0", "x86_64-unknown-linux-gnu")

	spec, err := b.Build(tc, domain.ProcessRequest{
		Args:        []string{"fmt", "--manifest-path=pkg/Cargo.toml"},
		InputFiles:  []string{"pkg/Cargo.toml", "pkg/src/lib.rs"},
		OutputFiles: []string{"pkg/src/lib.rs"},
	})
	require.NoError(t, err)

	assert.Equal(t, "proc-1", spec.ID)
	assert.Equal(t, []string{filepath.Join(binDir, "bash"), domain.WrapperScriptName}, spec.Argv)
	assert.Equal(t, "Run cargo fmt --manifest-path=pkg/Cargo.toml with rust-1.75.0-x86_64-unknown-linux-gnu", spec.Description)
	assert.Equal(t, []string{"pkg/Cargo.toml", "pkg/src/lib.rs"}, spec.InputFiles)
	assert.Equal(t, []string{"pkg/src/lib.rs"}, spec.OutputFiles)

	assert.Equal(t, map[string]string{
		"PATH":        "{chroot}/.rustup/toolchains/1.75.0-x86_64-unknown-linux-gnu/bin:{chroot}/shims",
		"RUSTUP_HOME": ".rustup",
		"CARGO_HOME":  ".cargo",
		"RUSTFLAGS":   "-C linker=" + filepath.Join(binDir, "cc"),
	}, spec.Env)

	assert.Equal(t, map[string]string{"rustup": ".rustup", "cargo": ".cargo"}, spec.NamedCaches)
	assert.Len(t, spec.ImmutableMounts, len(sandbox.SystemBinaries))
	assert.Equal(t, filepath.Join(binDir, "ld"), spec.ImmutableMounts["shims/ld"])

	body := script(t, spec)
	assert.True(t, strings.HasPrefix(body, "#!/usr/bin/env bash\nset -euo pipefail\n"))
	assert.Contains(t, body, `export RUSTUP_HOME="$(realpath .rustup)"`)
	assert.Contains(t, body, `export CARGO_HOME="$(realpath .cargo)"`)
	assert.Contains(t, body, ".rustup/toolchains/1.75.0-x86_64-unknown-linux-gnu/bin/cargo fmt")
	assert.NotContains(t, body, "cp -R")
}

func TestBuilder_Build_CacheNamespace(t *testing.T) {
	b := newBuilder(t, fakeBinDir(t), nil)
	tc := domain.NewToolchain("stable", "aarch64-apple-darwin")

	spec, err := b.Build(tc, domain.ProcessRequest{
		Args:           []string{"build", "--bin=app"},
		OutputFiles:    []string{"{cache_path}/debug/app", "static.txt"},
		CacheNamespace: "crates/app",
	})
	require.NoError(t, err)

	assert.Equal(t, ".cargo-target-cache/crates/app", spec.Env["CARGO_TARGET_DIR"])
	assert.Equal(t, ".cargo-target-cache", spec.NamedCaches["ctc"])
	assert.Equal(t, []string{"crates/app/debug/app", "static.txt"}, spec.OutputFiles)

	body := script(t, spec)
	assert.Contains(t, body, "mkdir -p crates/app/debug")
	assert.Contains(t, body, "cp -R .cargo-target-cache/crates/app/debug/app crates/app/debug/app")
	assert.Less(t, strings.Index(body, "cargo build"), strings.Index(body, "cp -R"))
}

func TestBuilder_Build_NoNamespaceUsesTargetDir(t *testing.T) {
	b := newBuilder(t, fakeBinDir(t), nil)
	tc := domain.NewToolchain("stable", "x86_64-unknown-linux-gnu")

	spec, err := b.Build(tc, domain.ProcessRequest{
		Args:        []string{"build"},
		OutputFiles: []string{"{cache_path}/release/app"},
		Mtime:       &domain.InstalledTool{Spec: domain.ToolSpec{Name: "cargo-mtime"}, Path: "/tools/bin/cargo-mtime"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"target/release/app"}, spec.OutputFiles)
	assert.NotContains(t, spec.Env, "CARGO_TARGET_DIR")
	assert.NotContains(t, spec.NamedCaches, "ctc")
	assert.NotContains(t, spec.ImmutableMounts, ".mtime-bin")
}

func TestBuilder_Build_Tools(t *testing.T) {
	b := newBuilder(t, fakeBinDir(t), nil)
	tc := domain.NewToolchain("stable", "x86_64-unknown-linux-gnu")

	spec, err := b.Build(tc, domain.ProcessRequest{
		Args:           []string{"build"},
		CacheNamespace: "app",
		Sccache:        &domain.InstalledTool{Spec: domain.ToolSpec{Name: "sccache"}, Path: "/tools/sccache-0.7.4/bin/sccache"},
		Mtime:          &domain.InstalledTool{Spec: domain.ToolSpec{Name: "cargo-mtime"}, Path: "/tools/mtime/bin/cargo-mtime"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/tools/sccache-0.7.4/bin", spec.ImmutableMounts[".sccache-bin"])
	assert.Equal(t, "{chroot}/.sccache-bin/sccache", spec.Env["RUSTC_WRAPPER"])
	assert.Equal(t, ".sccache", spec.Env["SCCACHE_DIR"])
	assert.Equal(t, "21234", spec.Env["SCCACHE_SERVER_PORT"])
	assert.Equal(t, ".sccache", spec.NamedCaches["sccache"])

	assert.Equal(t, "/tools/mtime/bin", spec.ImmutableMounts[".mtime-bin"])
	assert.Equal(t, ".cargo-target-cache/app/.mtime.db", spec.Env["CARGO_MTIME_DB"])

	body := script(t, spec)
	assert.Contains(t, body, `export SCCACHE_DIR="$(realpath .sccache)"`)
	assert.Contains(t, body, "./.mtime-bin/cargo-mtime mtime . .cargo-target-cache/app/.mtime.db")
	assert.Less(t, strings.Index(body, "cargo-mtime mtime"), strings.Index(body, "cargo build"))
}

func TestBuilder_Build_CallerEnvWins(t *testing.T) {
	b := newBuilder(t, fakeBinDir(t), map[string]string{"RUSTFLAGS": "-D warnings", "FROM_CONFIG": "1"})
	tc := domain.NewToolchain("stable", "x86_64-unknown-linux-gnu")

	spec, err := b.Build(tc, domain.ProcessRequest{
		Args:     []string{"test"},
		ExtraEnv: map[string]string{"FROM_CONFIG": "2"},
	})
	require.NoError(t, err)

	assert.Equal(t, "-D warnings", spec.Env["RUSTFLAGS"])
	assert.Equal(t, "2", spec.Env["FROM_CONFIG"])
}

func TestBuilder_Build_QuotesArguments(t *testing.T) {
	b := newBuilder(t, fakeBinDir(t), nil)
	tc := domain.NewToolchain("stable", "x86_64-unknown-linux-gnu")

	spec, err := b.Build(tc, domain.ProcessRequest{
		Args: []string{"clippy", "--", "-A clippy::needless_return; rm -rf /"},
	})
	require.NoError(t, err)

	body := script(t, spec)
	assert.Contains(t, body, `'-A clippy::needless_return; rm -rf /'`)
}

func TestBuilder_Build_MissingSystemBinary(t *testing.T) {
	b := newBuilder(t, fakeBinDir(t, "ar"), nil)

	_, err := b.Build(domain.NewToolchain("stable", "x86_64-unknown-linux-gnu"), domain.ProcessRequest{Args: []string{"build"}})

	require.ErrorContains(t, err, domain.ErrMissingSystemBinary.Error())
	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, "ar", zErr.Metadata()["binary"])
}
