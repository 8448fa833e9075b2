// Package manifest decodes Cargo.toml package manifests.
package manifest

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/porcelain/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ManifestParser = (*Parser)(nil)

// Parser implements ports.ManifestParser.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

type manifestDTO struct {
	Package           *packageDTO              `toml:"package"`
	Workspace         *workspaceDTO            `toml:"workspace"`
	Dependencies      map[string]dependencyDTO `toml:"dependencies"`
	DevDependencies   map[string]dependencyDTO `toml:"dev-dependencies"`
	BuildDependencies map[string]dependencyDTO `toml:"build-dependencies"`
	Target            map[string]targetDTO     `toml:"target"`
}

type packageDTO struct {
	Name string `toml:"name"`
	// Version is a string or an inherited { workspace = true } table.
	Version any `toml:"version"`
}

type workspaceDTO struct {
	Members []string `toml:"members"`
	Exclude []string `toml:"exclude"`
}

type targetDTO struct {
	Dependencies      map[string]dependencyDTO `toml:"dependencies"`
	DevDependencies   map[string]dependencyDTO `toml:"dev-dependencies"`
	BuildDependencies map[string]dependencyDTO `toml:"build-dependencies"`
}

// dependencyDTO accepts both `name = "1.0"` and `name = { path = "../x", ... }`.
type dependencyDTO domain.Dependency

// UnmarshalTOML implements toml.Unmarshaler.
func (d *dependencyDTO) UnmarshalTOML(v any) error {
	switch val := v.(type) {
	case string:
		d.Version = val
		return nil
	case map[string]any:
		var err error
		if d.Version, err = stringField(val, "version"); err != nil {
			return err
		}
		if d.Path, err = stringField(val, "path"); err != nil {
			return err
		}
		if d.Git, err = stringField(val, "git"); err != nil {
			return err
		}
		if d.Package, err = stringField(val, "package"); err != nil {
			return err
		}
		if d.Workspace, err = boolField(val, "workspace"); err != nil {
			return err
		}
		if d.Optional, err = boolField(val, "optional"); err != nil {
			return err
		}
		return nil
	default:
		return zerr.With(zerr.New("dependency must be a version string or a table"), "type", fmt.Sprintf("%T", v))
	}
}

func stringField(table map[string]any, key string) (string, error) {
	raw, ok := table[key]
	if !ok {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", zerr.With(zerr.New("dependency key must be a string"), "key", key)
	}
	return s, nil
}

func boolField(table map[string]any, key string) (bool, error) {
	raw, ok := table[key]
	if !ok {
		return false, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, zerr.With(zerr.New("dependency key must be a boolean"), "key", key)
	}
	return b, nil
}

// Parse decodes a manifest. Any syntax or shape error is reported as ErrMalformedManifest.
func (p *Parser) Parse(path string, data []byte) (*domain.Manifest, error) {
	var dto manifestDTO
	if _, err := toml.Decode(string(data), &dto); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrMalformedManifest.Error()), "path", path)
	}

	m := &domain.Manifest{
		Path:              path,
		Dependencies:      toDomain(dto.Dependencies),
		DevDependencies:   toDomain(dto.DevDependencies),
		BuildDependencies: toDomain(dto.BuildDependencies),
	}

	if dto.Package != nil {
		if dto.Package.Name == "" {
			err := zerr.With(domain.ErrMalformedManifest, "path", path)
			return nil, zerr.With(err, "reason", "package section without a name")
		}
		version, _ := dto.Package.Version.(string)
		m.Package = &domain.PackageSection{Name: dto.Package.Name, Version: version}
	}

	if dto.Workspace != nil {
		m.Workspace = &domain.WorkspaceSection{
			Members: dto.Workspace.Members,
			Exclude: dto.Workspace.Exclude,
		}
	}

	if len(dto.Target) > 0 {
		m.Target = make(map[string]domain.TargetDependencies, len(dto.Target))
		for cfg, t := range dto.Target {
			m.Target[cfg] = domain.TargetDependencies{
				Dependencies:      toDomain(t.Dependencies),
				DevDependencies:   toDomain(t.DevDependencies),
				BuildDependencies: toDomain(t.BuildDependencies),
			}
		}
	}

	return m, nil
}

func toDomain(in map[string]dependencyDTO) map[string]domain.Dependency {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]domain.Dependency, len(in))
	for name, dep := range in {
		out[name] = domain.Dependency(dep)
	}
	return out
}
