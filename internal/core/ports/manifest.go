package ports

import "go.trai.ch/porcelain/internal/core/domain"

// ManifestParser decodes package manifests.
type ManifestParser interface {
	// Parse decodes the manifest content read from the build-root relative path.
	Parse(path string, data []byte) (*domain.Manifest, error)
}

// MetadataParser decodes the toolchain's package metadata output into tagged artifacts.
type MetadataParser interface {
	// Parse is a pure function of its input.
	Parse(data []byte) (*domain.PackageMetadata, error)
}
