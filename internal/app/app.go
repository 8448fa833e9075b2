// Package app implements the application layer for porcelain.
package app

import (
	"context"
	"errors"
	"io"
	"os"
	"runtime"

	"go.trai.ch/porcelain/internal/adapters/discovery" //nolint:depguard // Wired in app layer
	"go.trai.ch/porcelain/internal/adapters/inference" //nolint:depguard // Wired in app layer
	"go.trai.ch/porcelain/internal/adapters/workspace" //nolint:depguard // Wired in app layer
	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/porcelain/internal/core/ports"
	"go.trai.ch/porcelain/internal/engine/goals"
	"go.trai.ch/zerr"
)

// Tool names installed through the compiler driver.
const (
	SccacheTool = "sccache"
	MtimeTool   = "cargo-mtime"
)

// Factories build the components that depend on the resolved configuration.
type Factories struct {
	Installer func(cfg *domain.Config, platform domain.Platform) ports.ToolchainInstaller
	Builder   func(cfg *domain.Config) ports.ProcessBuilder
	Runner    func(cfg *domain.Config) ports.ProcessRunner
}

// Dependencies are the configuration-independent collaborators of the App.
type Dependencies struct {
	ConfigLoader ports.ConfigLoader
	Logger       ports.Logger
	Tailor       *discovery.Tailor
	Resolver     ports.InputResolver
	Hasher       ports.Hasher
	Store        ports.MetadataStore
	Metadata     ports.MetadataParser
	Workspaces   *workspace.Resolver
	Inference    *inference.Engine
	Executor     ports.HostExecutor
	Metrics      ports.Metrics
	Telemetry    ports.Telemetry
}

// App represents the main application logic.
type App struct {
	deps      Dependencies
	factories Factories
	platform  func() (domain.Platform, error)
	out       io.Writer
}

// New creates a new App instance.
func New(deps Dependencies, factories Factories) *App {
	return &App{
		deps:      deps,
		factories: factories,
		platform:  func() (domain.Platform, error) { return domain.PlatformFor(runtime.GOOS, runtime.GOARCH) },
		out:       os.Stdout,
	}
}

// WithOutput redirects command output, which defaults to stdout. Logs are unaffected.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// WithPlatform overrides host platform detection.
func (a *App) WithPlatform(p domain.Platform) *App {
	a.platform = func() (domain.Platform, error) { return p, nil }
	return a
}

// session is everything one invocation knows about the build root.
type session struct {
	cfg       *domain.Config
	toolchain *domain.Toolchain
	tools     goals.Tools
	builder   ports.ProcessBuilder
	runner    ports.ProcessRunner
	universe  *domain.Universe
	mapping   *domain.PackageMapping
	graph     *domain.Graph
	dev       map[domain.Address][]domain.Address
}

func (a *App) loadConfig(cwd string) (*domain.Config, error) {
	cfg, err := a.deps.ConfigLoader.Load(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return cfg, nil
}

// installToolchain installs the configured toolchain for the host and the enabled helper tools.
func (a *App) installToolchain(
	ctx context.Context,
	cfg *domain.Config,
) (*domain.Toolchain, goals.Tools, error) {
	platform, err := a.platform()
	if err != nil {
		return nil, goals.Tools{}, err
	}
	triple, err := platform.Triple()
	if err != nil {
		return nil, goals.Tools{}, err
	}

	installer := a.factories.Installer(cfg, platform)
	tc, err := installer.Install(ctx, cfg.ToolchainRequest(triple))
	if err != nil {
		return nil, goals.Tools{}, err
	}

	var tools goals.Tools
	if cfg.Sccache.Enabled {
		if tools.Sccache, err = installer.InstallTool(ctx, tc, domain.ToolSpec{Name: SccacheTool, Version: cfg.Sccache.Version}); err != nil {
			return nil, goals.Tools{}, err
		}
	}
	if cfg.Mtime.Enabled {
		if tools.Mtime, err = installer.InstallTool(ctx, tc, domain.ToolSpec{Name: MtimeTool, Version: cfg.Mtime.Version}); err != nil {
			return nil, goals.Tools{}, err
		}
	}
	return tc, tools, nil
}

// load resolves the configuration, installs the toolchain and builds the entity universe,
// the package mapping and the validated dependency graph.
// Failures scoped to one manifest or package are logged and leave that entity out.
func (a *App) load(ctx context.Context, cwd string) (*session, error) {
	cfg, err := a.loadConfig(cwd)
	if err != nil {
		return nil, err
	}

	tc, tools, err := a.installToolchain(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:       cfg,
		toolchain: tc,
		tools:     tools,
		builder:   a.factories.Builder(cfg),
		runner:    a.factories.Runner(cfg),
	}

	putative, failures := a.deps.Tailor.Find(cfg.Root)
	a.logFailures(failures)

	expander := discovery.NewExpander(
		discovery.Options{Root: cfg.Root, CacheDir: cfg.CacheDir, SkipTests: cfg.Rust.SkipTests},
		a.deps.Resolver,
		a.deps.Hasher,
		a.deps.Store,
		a.deps.Metadata,
		s.builder,
		s.runner,
	)

	s.universe, failures = expander.BuildUniverse(ctx, tc, putative)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.logFailures(failures)

	if s.mapping, err = a.deps.Workspaces.Resolve(s.universe); err != nil {
		return nil, err
	}

	inferred, failures := a.deps.Inference.InferAll(ctx, s.universe, s.mapping)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.logFailures(failures)

	s.dev = inferred.Dev
	if s.graph, err = a.deps.Inference.Graph(s.universe, inferred); err != nil {
		return nil, err
	}
	if err := s.graph.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (a *App) logFailures(failures []error) {
	for _, err := range failures {
		if errors.Is(err, context.Canceled) {
			continue
		}
		a.deps.Logger.Error(err)
	}
}

func (a *App) goalRunner(s *session) *goals.Runner {
	return goals.NewRunner(
		goals.Options{
			Root:       s.cfg.Root,
			Release:    s.cfg.Rust.Release,
			ClippyArgs: s.cfg.Clippy.Args,
			SkipFmt:    s.cfg.Rust.SkipFmt,
			SkipLint:   s.cfg.Rust.SkipLint,
			SkipTests:  s.cfg.Rust.SkipTests,
		},
		s.toolchain,
		s.tools,
		s.builder,
		s.runner,
		a.deps.Resolver,
		a.deps.Executor,
		a.deps.Metrics,
	).WithClosure(goals.NewClosure(s.cfg.Root, s.universe, s.graph, s.dev, a.deps.Resolver))
}

// WriteMetrics writes a snapshot of the recorded metrics in the text exposition format.
func (a *App) WriteMetrics(path string) error {
	w, ok := a.deps.Metrics.(interface{ WriteTextfile(path string) error })
	if !ok {
		return nil
	}
	return w.WriteTextfile(path)
}

// Close flushes telemetry.
func (a *App) Close() error {
	if a.deps.Telemetry == nil {
		return nil
	}
	return a.deps.Telemetry.Close()
}
