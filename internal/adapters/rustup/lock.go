package rustup

import (
	"os"
	"path/filepath"

	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"
)

// acquireLock blocks until it holds an exclusive advisory lock on path.
// The returned function releases it and must be called on every path.
func acquireLock(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrLockFailed.Error()), "path", path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, domain.PrivateFilePerm) //nolint:gosec // Fixed cache path
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrLockFailed.Error()), "path", path)
	}

	for {
		err = unix.Flock(int(f.Fd()), unix.LOCK_EX)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		_ = f.Close()
		return nil, zerr.With(zerr.Wrap(err, domain.ErrLockFailed.Error()), "path", path)
	}

	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		_ = f.Close()
	}, nil
}
