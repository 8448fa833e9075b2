package goals

import (
	"os"
	"path"
	"path/filepath"

	"github.com/google/renameio"
	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/zerr"
)

// applyOutputs replaces files in the build root with the captured outputs of a process.
// It returns the root-relative paths written.
func applyOutputs(root string, res *domain.ProcessResult) ([]string, error) {
	var written []string
	for _, rel := range res.Outputs {
		ok, err := writeOutput(root, filepath.Join(res.OutputDir, filepath.FromSlash(rel)), rel)
		if err != nil {
			return nil, err
		}
		if ok {
			written = append(written, rel)
		}
	}
	return written, nil
}

// distribute writes the captured output files into dir below the build root, keyed by base name.
// It returns the root-relative paths written.
func distribute(root, dir string, res *domain.ProcessResult) ([]string, error) {
	var written []string
	for _, rel := range res.Outputs {
		dest := path.Join(dir, path.Base(rel))
		ok, err := writeOutput(root, filepath.Join(res.OutputDir, filepath.FromSlash(rel)), dest)
		if err != nil {
			return nil, err
		}
		if ok {
			written = append(written, dest)
		}
	}
	return written, nil
}

// writeOutput atomically replaces root/dest with src. Directories are skipped.
func writeOutput(root, src, dest string) (bool, error) {
	info, err := os.Stat(src)
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrMissingOutput.Error()), "path", dest)
	}
	if info.IsDir() {
		return false, nil
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to read output"), "path", dest)
	}

	target := filepath.Join(root, filepath.FromSlash(dest))
	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to create output directory"), "path", dest)
	}
	if err := renameio.WriteFile(target, data, info.Mode().Perm()); err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to write output"), "path", dest)
	}
	return true, nil
}

// releaseOutputs removes the captured outputs of a process once they have been consumed.
func releaseOutputs(res *domain.ProcessResult) {
	if res.OutputDir != "" {
		_ = os.RemoveAll(res.OutputDir)
	}
}

// outputPaths returns the host paths of the captured outputs.
func outputPaths(res *domain.ProcessResult) []string {
	if len(res.Outputs) == 0 {
		return nil
	}
	out := make([]string, 0, len(res.Outputs))
	for _, rel := range res.Outputs {
		out = append(out, filepath.Join(res.OutputDir, filepath.FromSlash(rel)))
	}
	return out
}
