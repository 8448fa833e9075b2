package ports

import "io/fs"

// FileSystem abstracts read access to the source tree for testability.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for the given path.
	Stat(path string) (fs.FileInfo, error)
	// WalkDir walks the tree rooted at root, calling fn for each file or directory.
	WalkDir(root string, fn fs.WalkDirFunc) error
}

// InputResolver expands source globs into concrete files.
//
//go:generate go run go.uber.org/mock/mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type InputResolver interface {
	// ResolveInputs returns the root-relative, slash-separated files under dir matching any pattern.
	// Patterns are relative to dir and may use "**" for any number of directories.
	ResolveInputs(root, dir string, patterns []string) ([]string, error)
}

// Hasher computes content digests used as cache keys.
type Hasher interface {
	// ComputeInputHash digests the salt strings and the content of the root-relative files.
	ComputeInputHash(root string, files []string, salt ...string) (string, error)
}
