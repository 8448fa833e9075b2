// Package cas implements the content-addressed package metadata store.
package cas

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/porcelain/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.MetadataStore = (*Store)(nil)

// Store implements ports.MetadataStore using a file-per-key strategy.
type Store struct{}

// NewStore creates a new MetadataStore.
func NewStore() (*Store, error) {
	return &Store{}, nil
}

// Get retrieves the metadata stored under key.
func (s *Store) Get(cacheDir, key string) (*domain.PackageMetadata, error) {
	filename := s.getFilename(cacheDir, key)
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "key", key)
	}

	var md domain.PackageMetadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "key", key)
	}

	return &md, nil
}

// Put stores the metadata under key.
// The record is written to a temporary file and renamed so readers never observe a partial write.
func (s *Store) Put(cacheDir, key string, md *domain.PackageMetadata) error {
	data, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal package metadata")
	}

	filename := s.getFilename(cacheDir, key)
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", dir)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(filename)+"-*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", dir)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // Best effort cleanup, a no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", tmpName)
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", tmpName)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", filename)
	}

	return nil
}

func (s *Store) getFilename(cacheDir, key string) string {
	return filepath.Join(domain.MetadataStorePath(cacheDir), FileKey(key)+".json")
}

// FileKey maps an arbitrary key onto a fixed-width file name.
func FileKey(key string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(key))
}
