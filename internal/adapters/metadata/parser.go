// Package metadata interprets the compiler driver's `metadata --format-version=1` output.
package metadata

import (
	"encoding/json"
	"slices"

	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/porcelain/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.MetadataParser = (*Parser)(nil)

// libraryKinds are the target kinds that produce a linkable library.
var libraryKinds = []string{"lib", "cdylib", "rlib", "staticlib", "dylib", "proc-macro"}

// Parser implements ports.MetadataParser.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

type document struct {
	Packages []packageDoc `json:"packages"`
}

type packageDoc struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Targets []targetDoc `json:"targets"`
}

type targetDoc struct {
	Kind    []string `json:"kind"`
	Name    string   `json:"name"`
	SrcPath string   `json:"src_path"`
}

// Parse reads the first package of the document and classifies its targets.
// Examples, benches and build scripts are not artifacts and are dropped.
func (p *Parser) Parse(data []byte) (*domain.PackageMetadata, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, zerr.Wrap(err, domain.ErrMalformedMetadata.Error())
	}

	if len(doc.Packages) == 0 {
		return nil, zerr.With(domain.ErrMalformedMetadata, "reason", "no packages")
	}

	pkg := doc.Packages[0]
	md := &domain.PackageMetadata{Name: pkg.Name, Version: pkg.Version}

	for i, target := range pkg.Targets {
		if target.Name == "" {
			err := zerr.With(domain.ErrMalformedMetadata, "reason", "target without a name")
			return nil, zerr.With(err, "index", i)
		}

		artifactType, ok := classify(target.Kind)
		if !ok {
			continue
		}
		md.Artifacts = append(md.Artifacts, domain.Artifact{
			Type:    artifactType,
			Name:    target.Name,
			SrcPath: target.SrcPath,
		})
	}

	return md, nil
}

func classify(kinds []string) (domain.ArtifactType, bool) {
	switch {
	case slices.ContainsFunc(kinds, func(k string) bool { return slices.Contains(libraryKinds, k) }):
		return domain.ArtifactLibrary, true
	case slices.Contains(kinds, "bin"):
		return domain.ArtifactBinary, true
	case slices.Contains(kinds, "test"):
		return domain.ArtifactTest, true
	default:
		return 0, false
	}
}
