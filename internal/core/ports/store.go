package ports

import "go.trai.ch/porcelain/internal/core/domain"

// MetadataStore caches package metadata keyed by the digest of the inputs it was computed from.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type MetadataStore interface {
	// Get retrieves metadata for a key from the store under cacheDir.
	// Returns nil, nil if not found.
	Get(cacheDir, key string) (*domain.PackageMetadata, error)

	// Put stores metadata under a key in the store under cacheDir.
	Put(cacheDir, key string, metadata *domain.PackageMetadata) error
}
