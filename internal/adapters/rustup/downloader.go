// Package rustup installs toolchains and helper tools into the shared cache.
package rustup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/porcelain/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Downloader = (*Downloader)(nil)

// Downloader implements ports.Downloader over HTTP.
type Downloader struct {
	client   *http.Client
	progress io.Writer
}

// NewDownloader creates a Downloader. A nil progress writer hides the progress bar.
func NewDownloader(client *http.Client, progress io.Writer) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Downloader{client: client, progress: progress}
}

// Fetch downloads url into dest, verifying size and sha256 while streaming.
// An existing dest that already matches is kept without a request.
func (d *Downloader) Fetch(ctx context.Context, url, dest string, want domain.Digest) error {
	if got, err := fileDigest(dest); err == nil && got == want {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrDownloadFailed.Error()), "path", dest)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrDownloadFailed.Error()), "url", url)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrDownloadFailed.Error()), "url", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		err := zerr.With(domain.ErrDownloadFailed, "url", url)
		return zerr.With(err, "status", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-"+filepath.Base(dest)+"-*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrDownloadFailed.Error()), "path", dest)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	bar := d.progressBar(want.Size, filepath.Base(dest))
	hash := sha256.New()
	size, copyErr := io.Copy(io.MultiWriter(tmp, hash, bar), resp.Body)
	_ = bar.Finish()
	closeErr := tmp.Close()

	if copyErr != nil {
		return zerr.With(zerr.Wrap(copyErr, domain.ErrDownloadFailed.Error()), "url", url)
	}
	if closeErr != nil {
		return zerr.With(zerr.Wrap(closeErr, domain.ErrDownloadFailed.Error()), "path", tmpName)
	}

	got := domain.Digest{SHA256: hex.EncodeToString(hash.Sum(nil)), Size: size}
	if err := checkDigest(url, want, got); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, domain.ExecPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrDownloadFailed.Error()), "path", tmpName)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrDownloadFailed.Error()), "path", dest)
	}
	return nil
}

func (d *Downloader) progressBar(size int64, desc string) *progressbar.ProgressBar {
	if d.progress == nil {
		return progressbar.NewOptions64(size, progressbar.OptionSetVisibility(false))
	}
	return progressbar.NewOptions64(size,
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetWriter(d.progress),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
}

func checkDigest(url string, want, got domain.Digest) error {
	if got.Size != want.Size {
		err := zerr.With(domain.ErrIntegrity, "url", url)
		err = zerr.With(err, "expected_size", want.Size)
		return zerr.With(err, "actual_size", got.Size)
	}
	if got.SHA256 != want.SHA256 {
		err := zerr.With(domain.ErrIntegrity, "url", url)
		err = zerr.With(err, "expected", want.SHA256)
		return zerr.With(err, "actual", got.SHA256)
	}
	return nil
}

func fileDigest(path string) (domain.Digest, error) {
	f, err := os.Open(path) //nolint:gosec // Paths live in the cache directory
	if err != nil {
		return domain.Digest{}, err
	}
	defer func() { _ = f.Close() }()

	hash := sha256.New()
	size, err := io.Copy(hash, f)
	if err != nil {
		return domain.Digest{}, err
	}
	return domain.Digest{SHA256: hex.EncodeToString(hash.Sum(nil)), Size: size}, nil
}
