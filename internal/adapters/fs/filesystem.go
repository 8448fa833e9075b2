// Package fs provides file system adapters for walking, resolving and hashing source files.
package fs

import (
	iofs "io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/porcelain/internal/core/ports"
)

var _ ports.FileSystem = (*FileSystem)(nil)

// FileSystem implements ports.FileSystem on the host file system.
type FileSystem struct{}

// NewFileSystem creates a new FileSystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{}
}

// ReadFile reads the entire file at path.
func (f *FileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path) //nolint:gosec // Path is controlled by caller
}

// Stat returns file info for the given path.
func (f *FileSystem) Stat(path string) (iofs.FileInfo, error) {
	return os.Stat(path)
}

// WalkDir walks the tree rooted at root.
func (f *FileSystem) WalkDir(root string, fn iofs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}
