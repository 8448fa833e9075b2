package fs

import (
	"os"
	"path/filepath"

	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/zerr"
)

// Verifier checks that a process produced its declared outputs.
type Verifier struct{}

// NewVerifier creates a new Verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// VerifyOutputs checks that every output exists below root.
// The first missing output is reported as ErrMissingOutput.
func (v *Verifier) VerifyOutputs(root string, outputs []string) error {
	for _, output := range outputs {
		path := filepath.Join(root, filepath.FromSlash(output))
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return zerr.With(domain.ErrMissingOutput, "path", output)
			}
			return zerr.With(zerr.Wrap(err, "failed to stat output"), "path", path)
		}
	}
	return nil
}
