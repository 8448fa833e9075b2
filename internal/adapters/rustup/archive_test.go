package rustup_test

import (
	"archive/tar"
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/porcelain/internal/adapters/rustup"
	"go.trai.ch/porcelain/internal/core/domain"
)

func writeTgz(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := pgzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name, Mode: 0o755, Size: int64(len(content)), Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func TestExtractBinary(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"README.md":      "docs",
		"cargo-binstall": "binary",
	}
	tgz := filepath.Join(dir, "cargo-binstall.full.tgz")
	zipPath := filepath.Join(dir, "cargo-binstall.full.zip")
	writeTgz(t, tgz, files)
	writeZip(t, zipPath, files)

	for _, archive := range []string{tgz, zipPath} {
		t.Run(filepath.Ext(archive), func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "bin", "cargo-binstall")
			require.NoError(t, rustup.ExtractBinary(archive, "cargo-binstall", dest))

			got, err := os.ReadFile(dest)
			require.NoError(t, err)
			assert.Equal(t, "binary", string(got))

			info, err := os.Stat(dest)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(domain.ExecPerm), info.Mode().Perm())
		})
	}
}

func TestExtractBinary_Errors(t *testing.T) {
	dir := t.TempDir()
	tgz := filepath.Join(dir, "a.tgz")
	writeTgz(t, tgz, map[string]string{"other": "x"})

	err := rustup.ExtractBinary(tgz, "cargo-binstall", filepath.Join(dir, "out"))
	require.ErrorContains(t, err, "archive member not found")

	err = rustup.ExtractBinary(filepath.Join(dir, "a.rar"), "cargo-binstall", filepath.Join(dir, "out"))
	require.ErrorContains(t, err, "unsupported archive format")
}
