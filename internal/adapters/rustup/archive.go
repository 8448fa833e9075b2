package rustup

import (
	"archive/tar"
	"archive/zip"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/pgzip"
	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/zerr"
)

// extractBinary copies the archive member whose base name is name to dest.
// Only .tgz and .zip archives are supported.
func extractBinary(archive, name, dest string) error {
	var err error
	switch {
	case strings.HasSuffix(archive, ".tgz"), strings.HasSuffix(archive, ".tar.gz"):
		err = extractFromTgz(archive, name, dest)
	case strings.HasSuffix(archive, ".zip"):
		err = extractFromZip(archive, name, dest)
	default:
		err = zerr.New("unsupported archive format")
	}
	if err != nil {
		err = zerr.With(err, "archive", archive)
		return zerr.With(err, "member", name)
	}
	return nil
}

func extractFromTgz(archive, name, dest string) error {
	f, err := os.Open(archive) //nolint:gosec // Verified download in the cache
	if err != nil {
		return zerr.Wrap(err, "failed to open archive")
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return zerr.Wrap(err, "failed to create gzip reader")
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return zerr.New("archive member not found")
		}
		if err != nil {
			return zerr.Wrap(err, "failed to read tar header")
		}
		if hdr.Typeflag != tar.TypeReg || path.Base(hdr.Name) != name {
			continue
		}
		return writeExecutable(tr, dest)
	}
}

func extractFromZip(archive, name, dest string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return zerr.Wrap(err, "failed to open archive")
	}
	defer func() { _ = zr.Close() }()

	for _, file := range zr.File {
		if file.FileInfo().IsDir() || path.Base(file.Name) != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return zerr.Wrap(err, "failed to open archive member")
		}
		defer func() { _ = rc.Close() }()
		return writeExecutable(rc, dest)
	}
	return zerr.New("archive member not found")
}

func writeExecutable(r io.Reader, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), domain.DirPerm); err != nil {
		return zerr.Wrap(err, "failed to create directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".extract-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, r); err != nil { //nolint:gosec // Size was verified with the archive digest
		_ = tmp.Close()
		return zerr.Wrap(err, "failed to extract")
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, "failed to close extracted file")
	}
	if err := os.Chmod(tmp.Name(), domain.ExecPerm); err != nil {
		return zerr.Wrap(err, "failed to chmod extracted file")
	}
	return os.Rename(tmp.Name(), dest)
}
