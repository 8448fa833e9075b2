// Package config provides the configuration loader for porcelain.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/porcelain/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

var sha256Pattern = regexp.MustCompile("^[0-9a-f]{64}$")

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger

	// Getenv is consulted for the cache location. Defaults to os.Getenv.
	Getenv func(string) string
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, Getenv: os.Getenv}
}

// Load finds porcelain.yaml by walking up from cwd and resolves it against the defaults.
// Without a configuration file the defaults apply and cwd becomes the build root.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	absCwd, err := filepath.Abs(cwd)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve working directory"), "cwd", cwd)
	}

	file := Defaults()
	root := absCwd

	configPath, found := findConfiguration(absCwd)
	if found {
		if err := readAndUnmarshalYAML(configPath, &file); err != nil {
			return nil, zerr.With(err, "path", configPath)
		}
		root = filepath.Dir(configPath)
	}

	cfg, err := l.resolve(root, &file)
	if err != nil {
		if found {
			return nil, zerr.With(err, "path", configPath)
		}
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads an explicitly named configuration file. The directory holding it is the build root.
func (l *Loader) LoadFile(path string) (*domain.Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve path"), "path", path)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, zerr.With(domain.ErrConfigNotFound, "path", absPath)
	}

	file := Defaults()
	if err := readAndUnmarshalYAML(absPath, &file); err != nil {
		return nil, zerr.With(err, "path", absPath)
	}

	cfg, err := l.resolve(filepath.Dir(absPath), &file)
	if err != nil {
		return nil, zerr.With(err, "path", absPath)
	}
	return cfg, nil
}

func findConfiguration(cwd string) (string, bool) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			return "", false
		}
		currentDir = parentDir
	}
}

func (l *Loader) resolve(root string, file *File) (*domain.Config, error) {
	if err := domain.ValidateToolchainVersion(file.Rust.Version); err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigInvalid.Error())
	}

	rustupVersions, err := parseKnownVersions(file.Rustup.KnownVersions)
	if err != nil {
		return nil, zerr.With(err, "section", "rustup")
	}
	binstallVersions, err := parseKnownVersions(file.Binstall.KnownVersions)
	if err != nil {
		return nil, zerr.With(err, "section", "binstall")
	}

	cacheDir, err := l.resolveCacheDir(root, file.Cache.Dir)
	if err != nil {
		return nil, err
	}

	extraEnv, err := resolveEnv(root, file.EnvFile, file.Env)
	if err != nil {
		return nil, err
	}

	cfg := &domain.Config{
		Root:     root,
		CacheDir: cacheDir,
		Rust: domain.RustOptions{
			Version:    file.Rust.Version,
			Components: file.Rust.Components,
			Release:    file.Rust.Release,
			Tailor:     isEnabled(file.Rust.Tailor),
			SkipFmt:    file.Rust.SkipFmt,
			SkipLint:   file.Rust.SkipLint || file.Clippy.Skip,
			SkipTests:  file.Rust.SkipTests,
		},
		Rustup: domain.DownloadOptions{
			Version:       strings.TrimPrefix(file.Rustup.Version, "v"),
			KnownVersions: rustupVersions,
		},
		Binstall: domain.BinstallOptions{
			DownloadOptions: domain.DownloadOptions{
				Version:       strings.TrimPrefix(file.Binstall.Version, "v"),
				KnownVersions: binstallVersions,
			},
			Enabled: isEnabled(file.Binstall.Enabled),
		},
		Sccache: domain.ToolOptions{Enabled: isEnabled(file.Sccache.Enabled), Version: file.Sccache.Version},
		Mtime:   domain.ToolOptions{Enabled: isEnabled(file.Mtime.Enabled), Version: file.Mtime.Version},
		Clippy:  domain.ClippyOptions{Args: file.Clippy.Args, Skip: file.Clippy.Skip},
		Sandbox: domain.SandboxOptions{SearchPaths: file.Sandbox.SearchPaths, Keep: file.Sandbox.Keep},
		ExtraEnv: extraEnv,
	}

	if cfg.Sccache.Enabled && !cfg.Binstall.Enabled && l.Logger != nil {
		l.Logger.Warn("sccache is enabled without binstall; it will be compiled from source")
	}

	return cfg, nil
}

func (l *Loader) resolveCacheDir(root, configured string) (string, error) {
	if configured != "" {
		if filepath.IsAbs(configured) {
			return filepath.Clean(configured), nil
		}
		return filepath.Join(root, configured), nil
	}

	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	if xdg := getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "porcelain"), nil
	}

	userCache, err := os.UserCacheDir()
	if err != nil {
		return "", zerr.Wrap(err, "failed to determine cache directory")
	}
	return filepath.Join(userCache, "porcelain"), nil
}

// resolveEnv merges the env file with the inline env section. Inline values win.
func resolveEnv(root, envFile string, inline map[string]string) (map[string]string, error) {
	env := make(map[string]string)

	if envFile != "" {
		path := envFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		values, err := godotenv.Read(path)
		if err != nil {
			err = zerr.Wrap(err, domain.ErrConfigInvalid.Error())
			return nil, zerr.With(err, "env_file", path)
		}
		for k, v := range values {
			env[k] = v
		}
	}

	for k, v := range inline {
		env[k] = v
	}

	if len(env) == 0 {
		return nil, nil
	}
	return env, nil
}

func parseKnownVersions(entries []string) (map[domain.Platform]domain.Digest, error) {
	out := make(map[domain.Platform]domain.Digest, len(entries))
	for _, entry := range entries {
		parts := strings.Split(entry, "|")
		if len(parts) != 3 {
			return nil, zerr.With(domain.ErrConfigInvalid, "known_version", entry)
		}

		platform := domain.Platform(strings.TrimSpace(parts[0]))
		if _, err := platform.Triple(); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigInvalid.Error()), "known_version", entry)
		}

		sum := strings.TrimSpace(parts[1])
		if !sha256Pattern.MatchString(sum) {
			return nil, zerr.With(domain.ErrConfigInvalid, "known_version", entry)
		}

		size, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
		if err != nil || size <= 0 {
			return nil, zerr.With(domain.ErrConfigInvalid, "known_version", entry)
		}

		out[platform] = domain.Digest{SHA256: sum, Size: size}
	}
	return out, nil
}

func isEnabled(b *bool) bool {
	return b != nil && *b
}

// readAndUnmarshalYAML reads a YAML file and decodes it into target, rejecting unknown keys.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is found by walking up from the working directory
	data, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, "failed to read config file")
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return zerr.Wrap(err, domain.ErrConfigInvalid.Error())
	}

	return nil
}
