package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"strings"

	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/porcelain/internal/core/ports"
)

// Walker provides file walking functionality over a source tree.
type Walker struct {
	fs ports.FileSystem
}

// NewWalker creates a new Walker.
func NewWalker(fsys ports.FileSystem) *Walker {
	return &Walker{fs: fsys}
}

// WalkFiles yields the paths of all files below root, skipping VCS metadata, hidden directories,
// compiler output directories and anything whose base name matches one of the ignores.
// Paths are yielded as the underlying WalkDir reports them, i.e. prefixed with root.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = w.fs.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if path != root {
				if skipAction := shouldSkip(d, ignores); skipAction != nil {
					return skipAction
				}
			}

			if d.IsDir() {
				return nil
			}

			for _, ignore := range ignores {
				if matched, _ := filepath.Match(ignore, d.Name()); matched {
					return nil
				}
			}

			if !yield(path) {
				return filepath.SkipAll
			}

			return nil
		})
	}
}

// shouldSkip returns filepath.SkipDir for directories that never hold sources.
func shouldSkip(d fs.DirEntry, ignores []string) error {
	if !d.IsDir() {
		return nil
	}

	name := d.Name()
	if strings.HasPrefix(name, ".") || name == domain.DefaultTargetDir {
		return filepath.SkipDir
	}

	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return filepath.SkipDir
		}
	}

	return nil
}
