// Package sandbox turns toolchain invocations into hermetic process specifications.
package sandbox

import (
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/zerr"
)

// SystemBinaries are the host tools every sandboxed toolchain invocation needs.
var SystemBinaries = []string{"cc", "ld", "ar", "as", "realpath", "bash"}

// Locator finds system binaries on an explicit search path. It never consults the host PATH.
type Locator struct {
	stat func(string) (os.FileInfo, error)
}

// NewLocator creates a new Locator.
func NewLocator() *Locator {
	return &Locator{stat: os.Stat}
}

// Find returns the first executable named name in searchPaths.
func (l *Locator) Find(name string, searchPaths []string) (string, error) {
	for _, dir := range searchPaths {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		info, err := l.stat(candidate)
		if err != nil || info.IsDir() || info.Mode()&0o111 == 0 {
			continue
		}
		return candidate, nil
	}

	err := zerr.With(domain.ErrMissingSystemBinary, "binary", name)
	return "", zerr.With(err, "search_path", strings.Join(searchPaths, string(os.PathListSeparator)))
}

// FindAll locates every name, failing on the first one that is missing.
func (l *Locator) FindAll(names []string, searchPaths []string) (map[string]string, error) {
	found := make(map[string]string, len(names))
	for _, name := range names {
		p, err := l.Find(name, searchPaths)
		if err != nil {
			return nil, err
		}
		found[name] = p
	}
	return found, nil
}
