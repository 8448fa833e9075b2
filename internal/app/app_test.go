package app_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/porcelain/internal/adapters/discovery"
	fsadapter "go.trai.ch/porcelain/internal/adapters/fs"
	"go.trai.ch/porcelain/internal/adapters/inference"
	"go.trai.ch/porcelain/internal/adapters/manifest"
	"go.trai.ch/porcelain/internal/adapters/metadata"
	"go.trai.ch/porcelain/internal/adapters/metrics"
	"go.trai.ch/porcelain/internal/adapters/workspace"
	"go.trai.ch/porcelain/internal/app"
	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/porcelain/internal/core/ports"
	"go.trai.ch/porcelain/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

var tree = map[string]string{
	"Cargo.toml":                     "[workspace]\nmembers = [\"crates/*\"]\n",
	"crates/app/Cargo.toml":          "[package]\nname = \"app\"\n\n[dependencies]\nlib = { path = \"../lib\" }\n",
	"crates/app/src/main.rs":         "fn main() {}\n",
	"crates/lib/Cargo.toml":          "[package]\nname = \"lib\"\n",
	"crates/lib/src/lib.rs":          "pub fn lib() {}\n",
	"target/debug/Cargo.toml":        "not a manifest",
	"crates/app/target/x/Cargo.toml": "not a manifest",
}

var packageMetadata = map[string]string{
	"crates/app/Cargo.toml": `{"packages":[{"name":"app","version":"0.1.0","targets":[{"kind":["bin"],"name":"app","src_path":"src/main.rs"}]}]}`,
	"crates/lib/Cargo.toml": `{"packages":[{"name":"lib","version":"0.1.0","targets":[{"kind":["lib"],"name":"lib","src_path":"src/lib.rs"}]}]}`,
}

type appFixture struct {
	cfg       *domain.Config
	out       bytes.Buffer
	loader    *mocks.MockConfigLoader
	logger    *mocks.MockLogger
	store     *mocks.MockMetadataStore
	installer *mocks.MockToolchainInstaller
	builder   *mocks.MockProcessBuilder
	runner    *mocks.MockProcessRunner
	executor  *mocks.MockHostExecutor
	app       *app.App

	// metadata answers metadata requests by manifest path.
	metadata map[string]string

	mu       sync.Mutex
	requests []domain.ProcessRequest
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
		require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	}
}

func newAppFixture(t *testing.T) *appFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	root := t.TempDir()
	writeTree(t, root, tree)

	f := &appFixture{
		cfg: &domain.Config{
			Root:     root,
			CacheDir: t.TempDir(),
			Rust:     domain.RustOptions{Version: "1.75.0", Tailor: true},
		},
		loader:    mocks.NewMockConfigLoader(ctrl),
		logger:    mocks.NewMockLogger(ctrl),
		store:     mocks.NewMockMetadataStore(ctrl),
		installer: mocks.NewMockToolchainInstaller(ctrl),
		builder:   mocks.NewMockProcessBuilder(ctrl),
		runner:    mocks.NewMockProcessRunner(ctrl),
		executor:  mocks.NewMockHostExecutor(ctrl),
		metadata:  packageMetadata,
	}

	f.loader.EXPECT().Load(root).Return(f.cfg, nil).AnyTimes()
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	fsys := fsadapter.NewFileSystem()
	walker := fsadapter.NewWalker(fsys)
	deps := app.Dependencies{
		ConfigLoader: f.loader,
		Logger:       f.logger,
		Tailor:       discovery.NewTailor(fsys, walker, manifest.NewParser()),
		Resolver:     fsadapter.NewResolver(walker),
		Hasher:       fsadapter.NewHasher(),
		Store:        f.store,
		Metadata:     metadata.NewParser(),
		Workspaces:   workspace.NewResolver(),
		Inference:    inference.NewEngine(),
		Executor:     f.executor,
		Metrics:      metrics.NoopRecorder{},
	}
	factories := app.Factories{
		Installer: func(*domain.Config, domain.Platform) ports.ToolchainInstaller { return f.installer },
		Builder:   func(*domain.Config) ports.ProcessBuilder { return f.builder },
		Runner:    func(*domain.Config) ports.ProcessRunner { return f.runner },
	}

	f.app = app.New(deps, factories).WithOutput(&f.out).WithPlatform(domain.PlatformLinuxX8664)
	return f
}

// expectSession stubs a toolchain install and a compiler driver that answers metadata requests
// from f.metadata and materializes declared outputs for everything else. Requests are recorded.
func (f *appFixture) expectSession(t *testing.T) {
	t.Helper()
	tc := domain.NewToolchain("1.75.0", "x86_64-unknown-linux-gnu")

	f.installer.EXPECT().Install(gomock.Any(), gomock.Any()).Return(tc, nil).AnyTimes()
	f.store.EXPECT().Get(f.cfg.CacheDir, gomock.Any()).Return(nil, nil).AnyTimes()
	f.store.EXPECT().Put(f.cfg.CacheDir, gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.builder.EXPECT().Build(tc, gomock.Any()).DoAndReturn(
		func(_ *domain.Toolchain, req domain.ProcessRequest) (*domain.ProcessSpec, error) {
			f.mu.Lock()
			f.requests = append(f.requests, req)
			f.mu.Unlock()
			return &domain.ProcessSpec{Description: req.Description, Argv: req.Args, OutputFiles: req.OutputFiles}, nil
		}).AnyTimes()
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, spec *domain.ProcessSpec) (*domain.ProcessResult, error) {
			if m, ok := strings.CutPrefix(spec.Description, "Inspect "); ok {
				return &domain.ProcessResult{Stdout: []byte(f.metadata[m])}, nil
			}
			dir := t.TempDir()
			for _, rel := range spec.OutputFiles {
				path := filepath.Join(dir, filepath.FromSlash(rel))
				require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
				require.NoError(t, os.WriteFile(path, []byte("binary"), domain.ExecPerm))
			}
			return &domain.ProcessResult{OutputDir: dir, Outputs: spec.OutputFiles}, nil
		}).AnyTimes()
}

func (f *appFixture) request(t *testing.T, description string) domain.ProcessRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, req := range f.requests {
		if req.Description == description {
			return req
		}
	}
	t.Fatalf("no request %q", description)
	return domain.ProcessRequest{}
}

func lines(buf *bytes.Buffer) []string {
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
}

func TestApp_Tailor(t *testing.T) {
	f := newAppFixture(t)

	require.NoError(t, f.app.Tailor(context.Background(), f.cfg.Root))
	assert.Equal(t, []string{
		"workspace\t//:workspace",
		"package\tcrates/app:app",
		"package\tcrates/lib:lib",
	}, lines(&f.out))
}

func TestApp_Tailor_Disabled(t *testing.T) {
	f := newAppFixture(t)
	f.cfg.Rust.Tailor = false

	require.NoError(t, f.app.Tailor(context.Background(), f.cfg.Root))
	assert.Empty(t, f.out.String())
}

func TestApp_ConfigError(t *testing.T) {
	f := newAppFixture(t)
	broken := app.New(app.Dependencies{ConfigLoader: brokenLoader{}, Logger: f.logger}, app.Factories{})

	err := broken.List(context.Background(), "/nowhere")
	require.ErrorContains(t, err, "failed to load configuration")
	require.ErrorContains(t, err, domain.ErrConfigNotFound.Error())
}

type brokenLoader struct{}

func (brokenLoader) Load(cwd string) (*domain.Config, error) {
	return nil, zerr.With(domain.ErrConfigNotFound, "path", cwd)
}

func TestApp_List(t *testing.T) {
	f := newAppFixture(t)
	f.expectSession(t)

	require.NoError(t, f.app.List(context.Background(), f.cfg.Root))

	got := lines(&f.out)
	assert.ElementsMatch(t, []string{
		"//:workspace",
		"crates/app:cargo_package",
		"crates/app:sources",
		"crates/app:package",
		"crates/app:bin-app",
		"crates/lib:cargo_package",
		"crates/lib:sources",
		"crates/lib:package",
		"crates/lib:library",
	}, got)
	assert.Less(t, indexOf(got, "crates/lib:library"), indexOf(got, "crates/app:package"))
	assert.Less(t, indexOf(got, "crates/app:sources"), indexOf(got, "//:workspace"))
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func TestApp_Deps(t *testing.T) {
	f := newAppFixture(t)
	f.expectSession(t)

	require.NoError(t, f.app.Deps(context.Background(), f.cfg.Root, []string{"crates/app:package"}, false))
	assert.ElementsMatch(t, []string{"//:workspace", "crates/app:sources", "crates/lib:library"}, lines(&f.out))
}

func TestApp_Deps_Transitive(t *testing.T) {
	f := newAppFixture(t)
	f.expectSession(t)

	require.NoError(t, f.app.Deps(context.Background(), f.cfg.Root, []string{"crates/app:bin-app"}, true))
	assert.ElementsMatch(t, []string{
		"//:workspace",
		"crates/app:package",
		"crates/app:sources",
		"crates/lib:library",
		"crates/lib:package",
		"crates/lib:sources",
	}, lines(&f.out))
}

func TestApp_Deps_UnknownAddress(t *testing.T) {
	f := newAppFixture(t)
	f.expectSession(t)

	err := f.app.Deps(context.Background(), f.cfg.Root, []string{"crates/missing:package"}, false)
	require.ErrorContains(t, err, domain.ErrEntityNotFound.Error())

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, "crates/missing:package", zErr.Metadata()["address"])
}

func TestApp_Package_SelectsTarget(t *testing.T) {
	f := newAppFixture(t)
	f.expectSession(t)

	require.NoError(t, f.app.Package(context.Background(), f.cfg.Root, []string{"crates/app:bin-app"}))
	out := f.out.String()
	assert.Contains(t, out, "package crates/app:bin-app")
	assert.Contains(t, out, "dist/crates/app/app")
	assert.NotContains(t, out, "crates/lib")
	assert.FileExists(t, filepath.Join(f.cfg.Root, "dist", "crates", "app", "app"))
}

func TestApp_Package_SeesPathDependencyAndWorkspace(t *testing.T) {
	f := newAppFixture(t)
	f.expectSession(t)

	require.NoError(t, f.app.Package(context.Background(), f.cfg.Root, []string{"crates/app"}))

	assert.Equal(t, []string{
		"Cargo.toml",
		"crates/app/Cargo.toml",
		"crates/app/src/main.rs",
		"crates/lib/Cargo.toml",
		"crates/lib/src/lib.rs",
	}, f.request(t, "Build crates/app:bin-app").InputFiles)
}

func TestApp_DevDependencyBackEdge(t *testing.T) {
	f := newAppFixture(t)
	writeTree(t, f.cfg.Root, map[string]string{
		"crates/app/Cargo.toml": "[package]\nname = \"app\"\n\n[dependencies]\nlib = { path = \"../lib\" }\n",
		"crates/app/src/lib.rs": "pub fn app() {}\n",
		"crates/lib/Cargo.toml": "[package]\nname = \"lib\"\n\n[dev-dependencies]\napp = { path = \"../app\" }\n",
	})
	f.metadata = map[string]string{
		"crates/app/Cargo.toml": `{"packages":[{"name":"app","targets":[{"kind":["lib"],"name":"app"},{"kind":["bin"],"name":"app"}]}]}`,
		"crates/lib/Cargo.toml": packageMetadata["crates/lib/Cargo.toml"],
	}
	f.expectSession(t)

	require.NoError(t, f.app.List(context.Background(), f.cfg.Root))
	assert.Contains(t, lines(&f.out), "crates/app:library")

	require.NoError(t, f.app.Test(context.Background(), f.cfg.Root, []string{"crates/lib"}))
	assert.Contains(t, f.request(t, "Test crates/lib:library").InputFiles, "crates/app/src/lib.rs")
}

func TestApp_Lint_UnknownTarget(t *testing.T) {
	f := newAppFixture(t)
	f.expectSession(t)

	err := f.app.Lint(context.Background(), f.cfg.Root, []string{"crates/nope"})
	require.ErrorContains(t, err, domain.ErrEntityNotFound.Error())

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, "crates/nope", zErr.Metadata()["target"])
}

func TestApp_Run(t *testing.T) {
	f := newAppFixture(t)
	f.expectSession(t)
	f.executor.EXPECT().Exec(gomock.Any(), gomock.Any(), []string{"--flag"}, gomock.Nil()).Return([]byte("hello\n"), nil)

	require.NoError(t, f.app.Run(context.Background(), f.cfg.Root, "crates/app:bin-app", []string{"--flag"}))
	assert.Equal(t, "hello\n", f.out.String())
}

func TestApp_InstallToolchain(t *testing.T) {
	f := newAppFixture(t)
	f.cfg.Sccache = domain.ToolOptions{Enabled: true, Version: "0.7.4"}
	tc := domain.NewToolchain("1.75.0", "x86_64-unknown-linux-gnu")

	f.installer.EXPECT().Install(gomock.Any(), domain.NewToolchainRequest("1.75.0", "x86_64-unknown-linux-gnu")).Return(tc, nil)
	f.installer.EXPECT().InstallTool(gomock.Any(), tc, domain.ToolSpec{Name: app.SccacheTool, Version: "0.7.4"}).
		Return(&domain.InstalledTool{Spec: domain.ToolSpec{Name: app.SccacheTool, Version: "0.7.4"}, Path: "/tools/sccache"}, nil)

	require.NoError(t, f.app.InstallToolchain(context.Background(), f.cfg.Root))
	got := lines(&f.out)
	require.Len(t, got, 2)
	assert.True(t, strings.HasPrefix(got[0], tc.String()+"\t"))
	assert.Equal(t, "sccache-0.7.4\t/tools/sccache", got[1])
}

func TestApp_Clean(t *testing.T) {
	f := newAppFixture(t)
	cache := f.cfg.CacheDir

	keep := domain.NamedCachePath(cache, domain.TargetCache)
	for _, dir := range []string{
		domain.MetadataStorePath(cache),
		domain.SandboxRootPath(cache),
		domain.NamedCachePath(cache, domain.RustupCache),
		keep,
	} {
		require.NoError(t, os.MkdirAll(dir, domain.DirPerm))
	}

	require.NoError(t, f.app.Clean(context.Background(), f.cfg.Root, app.CleanOptions{Metadata: true, Sandboxes: true}))

	assert.NoDirExists(t, domain.MetadataStorePath(cache))
	assert.NoDirExists(t, domain.SandboxRootPath(cache))
	assert.DirExists(t, domain.NamedCachePath(cache, domain.RustupCache))
	assert.DirExists(t, keep)

	require.NoError(t, f.app.Clean(context.Background(), f.cfg.Root, app.CleanOptions{Toolchains: true}))
	assert.NoDirExists(t, domain.NamedCachePath(cache, domain.RustupCache))
	assert.DirExists(t, keep)
}
