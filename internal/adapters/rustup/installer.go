package rustup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/porcelain/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

var _ ports.ToolchainInstaller = (*Installer)(nil)

var initArgs = []string{"--no-update-default-toolchain", "--no-modify-path", "-y"}

// installStep is one toolchain manager invocation.
type installStep struct {
	name string
	args []string
}

// Installer implements ports.ToolchainInstaller. It is the only writer of the
// rustup and cargo named caches.
type Installer struct {
	cfg        *domain.Config
	platform   domain.Platform
	downloader ports.Downloader
	executor   ports.HostExecutor
	logger     ports.Logger
	telemetry  ports.Telemetry
	metrics    ports.Metrics

	group singleflight.Group
}

// NewInstaller creates an Installer for the resolved configuration and host platform.
func NewInstaller(
	cfg *domain.Config,
	platform domain.Platform,
	downloader ports.Downloader,
	executor ports.HostExecutor,
	logger ports.Logger,
	telemetry ports.Telemetry,
	metrics ports.Metrics,
) *Installer {
	return &Installer{
		cfg:        cfg,
		platform:   platform,
		downloader: downloader,
		executor:   executor,
		logger:     logger,
		telemetry:  telemetry,
		metrics:    metrics,
	}
}

// Install makes the requested toolchain available in the shared cache.
func (i *Installer) Install(ctx context.Context, req domain.ToolchainRequest) (*domain.Toolchain, error) {
	if err := domain.ValidateToolchainVersion(req.Version); err != nil {
		return nil, err
	}
	if _, ok := i.cfg.Rustup.KnownVersions[i.platform]; !ok {
		err := zerr.With(domain.ErrUnsupportedPlatform, "platform", string(i.platform))
		return nil, zerr.With(err, "tool", "rustup")
	}

	v, err := i.shared(ctx, "toolchain|"+req.Key(), func(ctx context.Context) (any, error) {
		return i.install(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Toolchain), nil
}

// shared runs fn once per key across concurrent callers. The install outlives the caller
// that started it, so each caller only stops waiting when its own context ends.
func (i *Installer) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := i.group.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (i *Installer) install(ctx context.Context, req domain.ToolchainRequest) (tc *domain.Toolchain, err error) {
	tc = domain.NewToolchain(req.Version, req.Target)
	stamp := i.stampPath("toolchain", req.Key())

	ctx, vertex := i.telemetry.Record(ctx, "install "+tc.String())
	start := time.Now()
	defer func() {
		vertex.Complete(err)
		i.metrics.ObserveInstall(req.Target, time.Since(start), err)
	}()

	if stampExists(stamp) {
		vertex.Cached()
		return tc, nil
	}

	unlock, err := acquireLock(domain.InstallLockPath(i.cfg.CacheDir))
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Another process may have finished while this one waited for the lock.
	if stampExists(stamp) {
		vertex.Cached()
		return tc, nil
	}

	rustup, err := i.ensureRustup(ctx)
	if err != nil {
		return nil, i.installError(err, "rustup-init", req)
	}

	steps := []installStep{
		{"toolchain install", []string{"toolchain", "install", req.Version}},
		{"target add", []string{"target", "add", "--toolchain=" + req.Version, req.Target}},
	}
	if len(req.Components) > 0 {
		args := append([]string{"component", "add", "--toolchain=" + req.Version}, req.Components...)
		steps = append(steps, installStep{"component add", args})
	}

	for _, step := range steps {
		i.logger.Info(fmt.Sprintf("rustup %s (%s)", step.name, tc))
		_, stepVertex := i.telemetry.Record(ctx, "rustup "+step.name)
		_, err := i.executor.Exec(ctx, rustup, step.args, i.cacheEnv())
		stepVertex.Complete(err)
		if err != nil {
			return nil, i.installError(err, step.name, req)
		}
	}

	if err := writeStamp(stamp, req.Key()); err != nil {
		return nil, err
	}
	return tc, nil
}

// ensureRustup downloads and runs the installer once per installer version and returns
// the host path of the toolchain manager.
func (i *Installer) ensureRustup(ctx context.Context) (string, error) {
	rustup := filepath.Join(domain.NamedCachePath(i.cfg.CacheDir, domain.CargoCache), "bin", "rustup")
	stamp := i.stampPath("rustup-init", i.cfg.Rustup.Version)
	if stampExists(stamp) {
		return rustup, nil
	}

	digest, ok := i.cfg.Rustup.KnownVersions[i.platform]
	if !ok {
		err := zerr.With(domain.ErrUnsupportedPlatform, "platform", string(i.platform))
		return "", zerr.With(err, "tool", "rustup")
	}
	triple, err := i.platform.Triple()
	if err != nil {
		return "", err
	}

	dest := filepath.Join(i.cfg.CacheDir, domain.DownloadsDirName, "rustup-init-"+i.cfg.Rustup.Version+"-"+triple)
	if err := i.downloader.Fetch(ctx, RustupInitURL(i.cfg.Rustup.Version, triple), dest, digest); err != nil {
		return "", err
	}

	i.logger.Info("installing rustup " + i.cfg.Rustup.Version)
	if _, err := i.executor.Exec(ctx, dest, initArgs, i.cacheEnv()); err != nil {
		return "", err
	}

	if err := writeStamp(stamp, i.cfg.Rustup.Version); err != nil {
		return "", err
	}
	return rustup, nil
}

// InstallTool installs a helper tool into its own directory below the tools cache.
func (i *Installer) InstallTool(
	ctx context.Context,
	toolchain *domain.Toolchain,
	spec domain.ToolSpec,
) (*domain.InstalledTool, error) {
	v, err := i.shared(ctx, "tool|"+spec.Name+"|"+spec.Version, func(ctx context.Context) (any, error) {
		return i.installTool(ctx, toolchain, spec)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.InstalledTool), nil
}

func (i *Installer) installTool(
	ctx context.Context,
	toolchain *domain.Toolchain,
	spec domain.ToolSpec,
) (tool *domain.InstalledTool, err error) {
	dir := domain.ToolInstallPath(i.cfg.CacheDir, spec.Name, spec.Version)
	tool = &domain.InstalledTool{Spec: spec, Path: filepath.Join(dir, "bin", spec.Name)}

	ctx, vertex := i.telemetry.Record(ctx, "install "+spec.Name+" "+spec.Version)
	defer func() { vertex.Complete(err) }()

	if _, statErr := os.Stat(tool.Path); statErr == nil {
		vertex.Cached()
		return tool, nil
	}

	unlock, err := acquireLock(domain.InstallLockPath(i.cfg.CacheDir))
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, statErr := os.Stat(tool.Path); statErr == nil {
		vertex.Cached()
		return tool, nil
	}

	env := i.cacheEnv()
	binDir := i.hostPath(toolchain.BinDir())
	cargo := i.hostPath(toolchain.Cargo())

	var args []string
	if i.cfg.Binstall.Enabled {
		binstall, err := i.ensureBinstall(ctx)
		if err != nil {
			return nil, i.toolError(err, spec)
		}
		binDir = filepath.Dir(binstall) + string(os.PathListSeparator) + binDir
		args = []string{"binstall", "--install-path=" + filepath.Join(dir, "bin"), spec.Name, "--version=" + spec.Version, "-y"}
	} else {
		args = []string{"install", "--root=" + dir, spec.Name, "--version=" + spec.Version}
	}
	env = append(env, "PATH="+binDir)

	i.logger.Info(fmt.Sprintf("installing %s %s", spec.Name, spec.Version))
	if _, err := i.executor.Exec(ctx, cargo, args, env); err != nil {
		return nil, i.toolError(err, spec)
	}

	if _, err := os.Stat(tool.Path); err != nil {
		return nil, i.toolError(zerr.With(domain.ErrMissingOutput, "path", tool.Path), spec)
	}
	return tool, nil
}

// ensureBinstall downloads and extracts cargo-binstall. Callers hold the install lock.
func (i *Installer) ensureBinstall(ctx context.Context) (string, error) {
	version := i.cfg.Binstall.Version
	binary := filepath.Join(domain.ToolInstallPath(i.cfg.CacheDir, binstallBinary, version), "bin", binstallBinary)
	if _, err := os.Stat(binary); err == nil {
		return binary, nil
	}

	digest, ok := i.cfg.Binstall.KnownVersions[i.platform]
	if !ok {
		err := zerr.With(domain.ErrUnsupportedPlatform, "platform", string(i.platform))
		return "", zerr.With(err, "tool", binstallBinary)
	}
	url, err := BinstallURL(version, i.platform)
	if err != nil {
		return "", err
	}

	archive := filepath.Join(i.cfg.CacheDir, domain.DownloadsDirName, path.Base(url))
	if err := i.downloader.Fetch(ctx, url, archive, digest); err != nil {
		return "", err
	}
	if err := extractBinary(archive, binstallBinary, binary); err != nil {
		return "", err
	}
	return binary, nil
}

// cacheEnv points the toolchain manager and package manager at the named caches on the host.
func (i *Installer) cacheEnv() []string {
	return []string{
		"RUSTUP_HOME=" + domain.NamedCachePath(i.cfg.CacheDir, domain.RustupCache),
		"CARGO_HOME=" + domain.NamedCachePath(i.cfg.CacheDir, domain.CargoCache),
	}
}

// hostPath maps a sandbox-relative path inside the rustup cache onto the host.
func (i *Installer) hostPath(rel string) string {
	rel = strings.TrimPrefix(rel, domain.RustupCache.Path+"/")
	return filepath.Join(domain.NamedCachePath(i.cfg.CacheDir, domain.RustupCache), filepath.FromSlash(rel))
}

func (i *Installer) stampPath(kind, key string) string {
	name := fmt.Sprintf("%s-%016x", kind, xxhash.Sum64String(key))
	return filepath.Join(domain.NamedCachePath(i.cfg.CacheDir, domain.RustupCache), domain.StampsDirName, name)
}

// installError attaches the failed step to err. Platform and integrity failures are not install
// failures and pass through unchanged.
func (i *Installer) installError(err error, step string, req domain.ToolchainRequest) error {
	if passThrough(err) {
		return err
	}
	wrapped := zerr.With(zerr.Wrap(err, domain.ErrToolchainInstall.Error()), "step", step)
	wrapped = zerr.With(wrapped, "version", req.Version)
	wrapped = zerr.With(wrapped, "target", req.Target)
	if md := execMetadata(err); md != nil {
		if stderr, ok := md["stderr"]; ok {
			wrapped = zerr.With(wrapped, "stderr", stderr)
		}
		if code, ok := md["exit_code"]; ok {
			wrapped = zerr.With(wrapped, "exit_code", code)
		}
	}
	return wrapped
}

func (i *Installer) toolError(err error, spec domain.ToolSpec) error {
	if passThrough(err) {
		return err
	}
	wrapped := zerr.With(zerr.Wrap(err, domain.ErrToolInstall.Error()), "tool", spec.Name)
	return zerr.With(wrapped, "version", spec.Version)
}

// passThrough reports whether err stems from an unsupported platform or a failed integrity check.
func passThrough(err error) bool {
	for current := err; current != nil; current = errors.Unwrap(current) {
		z, ok := current.(*zerr.Error)
		if !ok {
			continue
		}
		switch z.Message() {
		case domain.ErrUnsupportedPlatform.Error(), domain.ErrIntegrity.Error():
			return true
		}
	}
	return false
}

// execMetadata returns the metadata of the first layer that carries an exit code.
func execMetadata(err error) map[string]any {
	for current := err; current != nil; current = errors.Unwrap(current) {
		md, ok := current.(interface{ Metadata() map[string]any })
		if !ok {
			continue
		}
		if m := md.Metadata(); m["exit_code"] != nil {
			return m
		}
	}
	return nil
}

func stampExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// writeStamp marks an install as complete. The rename makes it visible atomically.
func writeStamp(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create stamp directory"), "path", path)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content+"\n"), domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write stamp"), "path", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write stamp"), "path", path)
	}
	return nil
}
