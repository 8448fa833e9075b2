package rustup

import (
	"fmt"
	"strings"

	"go.trai.ch/porcelain/internal/core/domain"
)

const (
	rustupArchiveURL = "https://static.rust-lang.org/rustup/archive"
	binstallRepoURL  = "https://github.com/cargo-bins/cargo-binstall"

	binstallBinary = "cargo-binstall"
)

// RustupInitURL returns the download location of the installer for a version and target triple.
func RustupInitURL(version, triple string) string {
	return fmt.Sprintf("%s/%s/%s/rustup-init", rustupArchiveURL, strings.TrimPrefix(version, "v"), triple)
}

// BinstallURL returns the release archive of cargo-binstall for a platform.
// Linux releases ship as .tgz, macOS releases as .zip.
func BinstallURL(version string, platform domain.Platform) (string, error) {
	triple, err := platform.Triple()
	if err != nil {
		return "", err
	}
	ext := "full.tgz"
	if platform.IsMacOS() {
		ext = "full.zip"
	}
	return fmt.Sprintf("%s/releases/download/v%s/%s-%s.%s",
		binstallRepoURL, strings.TrimPrefix(version, "v"), binstallBinary, triple, ext), nil
}
