package app

import (
	"strings"

	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/zerr"
)

// selectPackages resolves target specs to packages. Without specs every package is selected.
//
//	crates/a       the package rooted at crates/a
//	crates/a:lib   the package owning that entity
//	crates::       every package at or below crates
//	::             every package
func selectPackages(universe *domain.Universe, specs []string) ([]*domain.PackageEntity, error) {
	all := universe.Packages()
	if len(specs) == 0 {
		return all, nil
	}

	selected := make(map[domain.Address]bool)
	for _, spec := range specs {
		matched, err := matchSpec(universe, all, spec)
		if err != nil {
			return nil, err
		}
		for _, pkg := range matched {
			selected[pkg.Address] = true
		}
	}

	var out []*domain.PackageEntity
	for _, pkg := range all {
		if selected[pkg.Address] {
			out = append(out, pkg)
		}
	}
	return out, nil
}

func matchSpec(universe *domain.Universe, all []*domain.PackageEntity, spec string) ([]*domain.PackageEntity, error) {
	notFound := zerr.With(domain.ErrEntityNotFound, "target", spec)

	if prefix, ok := strings.CutSuffix(spec, "::"); ok {
		prefix = domain.NormalizeDir(strings.TrimPrefix(prefix, "//"))
		var out []*domain.PackageEntity
		for _, pkg := range all {
			if prefix == "" || pkg.Dir == prefix || strings.HasPrefix(pkg.Dir, prefix+"/") {
				out = append(out, pkg)
			}
		}
		if len(out) == 0 {
			return nil, notFound
		}
		return out, nil
	}

	if !strings.Contains(spec, ":") {
		dir := domain.NormalizeDir(strings.TrimPrefix(spec, "//"))
		if pkg, ok := universe.Package(domain.NewAddress(dir, domain.PackageGeneratorName)); ok {
			return []*domain.PackageEntity{pkg}, nil
		}
		return nil, notFound
	}

	addr, err := domain.ParseAddress(spec)
	if err != nil {
		return nil, err
	}
	if pkg, ok := universe.Package(addr); ok {
		return []*domain.PackageEntity{pkg}, nil
	}
	if a, ok := universe.Artifact(addr); ok {
		if pkg, ok := universe.PackageOf(a); ok {
			return []*domain.PackageEntity{pkg}, nil
		}
	}
	return nil, notFound
}
