package fs

import (
	"path"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/porcelain/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver implements the InputResolver interface by walking the package directory.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// ResolveInputs resolves the given patterns, relative to dir, to root-relative file paths.
// A pattern without matches is not an error: packages routinely lack build.rs or benches.
func (r *Resolver) ResolveInputs(root, dir string, patterns []string) ([]string, error) {
	for _, pattern := range patterns {
		if _, err := path.Match(strings.ReplaceAll(pattern, "**", "*"), ""); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "invalid glob pattern"), "pattern", pattern)
		}
	}

	base := filepath.Join(root, filepath.FromSlash(dir))
	var result []string

	for file := range r.walker.WalkFiles(base, nil) {
		rel, err := filepath.Rel(base, file)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to relativize path"), "path", file)
		}
		rel = filepath.ToSlash(rel)

		if slices.ContainsFunc(patterns, func(p string) bool { return MatchGlob(p, rel) }) {
			result = append(result, path.Join(dir, rel))
		}
	}

	slices.Sort(result)
	return result, nil
}

// MatchGlob reports whether a slash-separated name matches pattern.
// Segments are matched with path.Match; a "**" segment matches zero or more segments.
func MatchGlob(pattern, name string) bool {
	return matchSegments(strings.Split(pattern, "/"), strings.Split(name, "/"))
}

func matchSegments(pattern, name []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			for i := 0; i <= len(name); i++ {
				if matchSegments(rest, name[i:]) {
					return true
				}
			}
			return false
		}

		if len(name) == 0 {
			return false
		}
		if ok, err := path.Match(pattern[0], name[0]); err != nil || !ok {
			return false
		}
		pattern, name = pattern[1:], name[1:]
	}
	return len(name) == 0
}
