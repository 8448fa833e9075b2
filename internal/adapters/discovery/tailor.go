// Package discovery finds package manifests and expands packages into artifact entities.
package discovery

import (
	"path/filepath"
	"slices"

	fsadapter "go.trai.ch/porcelain/internal/adapters/fs"
	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/porcelain/internal/core/ports"
	"go.trai.ch/zerr"
)

// Tailor proposes workspace and package entities for manifests in a source tree.
type Tailor struct {
	fs     ports.FileSystem
	walker *fsadapter.Walker
	parser ports.ManifestParser
}

// NewTailor creates a new Tailor.
func NewTailor(fsys ports.FileSystem, walker *fsadapter.Walker, parser ports.ManifestParser) *Tailor {
	return &Tailor{fs: fsys, walker: walker, parser: parser}
}

// Find returns putative entities for every manifest below root. Discovery is the only source of
// entities, so no manifest is ever claimed beforehand. A manifest may yield a workspace, a package,
// or both. Unreadable or malformed manifests are reported individually and do not hide the others.
func (t *Tailor) Find(root string) ([]domain.PutativeEntity, []error) {
	var (
		found    []domain.PutativeEntity
		failures []error
	)

	for path := range t.walker.WalkFiles(root, nil) {
		if filepath.Base(path) != domain.ManifestFileName {
			continue
		}

		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			failures = append(failures, zerr.With(zerr.Wrap(err, "failed to relativize manifest"), "path", path))
			continue
		}
		dir := domain.NormalizeDir(filepath.ToSlash(rel))

		manifestPath := domain.ManifestPathFor(dir)
		data, err := t.fs.ReadFile(path)
		if err != nil {
			failures = append(failures, zerr.With(zerr.Wrap(err, "failed to read manifest"), "path", manifestPath))
			continue
		}

		manifest, err := t.parser.Parse(manifestPath, data)
		if err != nil {
			failures = append(failures, err)
			continue
		}

		if manifest.HasWorkspace() {
			found = append(found, domain.PutativeEntity{
				Kind:     domain.PutativeWorkspace,
				Dir:      dir,
				Name:     domain.WorkspaceEntityName,
				Manifest: manifest,
			})
		}
		if manifest.HasPackage() {
			found = append(found, domain.PutativeEntity{
				Kind:     domain.PutativePackage,
				Dir:      dir,
				Name:     manifest.Package.Name,
				Manifest: manifest,
			})
		}
	}

	slices.SortStableFunc(found, func(a, b domain.PutativeEntity) int {
		if a.Dir != b.Dir {
			if a.Dir < b.Dir {
				return -1
			}
			return 1
		}
		// Workspaces sort before packages in the same directory.
		if a.Kind == b.Kind {
			return 0
		}
		if a.Kind == domain.PutativeWorkspace {
			return -1
		}
		return 1
	})
	return found, failures
}
