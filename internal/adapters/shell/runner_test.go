package shell_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/porcelain/internal/adapters/fs"
	"go.trai.ch/porcelain/internal/adapters/metrics"
	"go.trai.ch/porcelain/internal/adapters/shell"
	"go.trai.ch/porcelain/internal/adapters/telemetry"
	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/porcelain/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type runnerFixture struct {
	root     string
	cacheDir string
	runner   *shell.Runner
}

func newRunnerFixture(t *testing.T, keep bool) runnerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	root := t.TempDir()
	cacheDir := t.TempDir()

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()

	runner := shell.NewRunner(
		shell.Options{Root: root, CacheDir: cacheDir, Keep: keep},
		mockLogger,
		telemetry.NewNoop(),
		metrics.NoopRecorder{},
		fs.NewVerifier(),
	)
	return runnerFixture{root: root, cacheDir: cacheDir, runner: runner}
}

const hostPath = "/usr/bin:/bin"

func script(body string) map[string][]byte {
	return map[string][]byte{domain.WrapperScriptName: []byte("#!/bin/sh\nset -e\n" + body + "\n")}
}

func TestRunner_Run_CapturesOutputs(t *testing.T) {
	f := newRunnerFixture(t, false)
	require.NoError(t, os.MkdirAll(filepath.Join(f.root, "pkg", "src"), domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(f.root, "pkg", "src", "lib.rs"), []byte("fn a() {}\n"), domain.FilePerm))

	spec := &domain.ProcessSpec{
		ID:             "build-1",
		Description:    "build pkg",
		Argv:           []string{"/bin/sh", domain.WrapperScriptName},
		InputFiles:     []string{"pkg/src/lib.rs"},
		GeneratedFiles: script(`mkdir -p out/dir; cp pkg/src/lib.rs out/lib.rs; echo "$SANDBOX" > out/dir/where; echo built`),
		Env:            map[string]string{"PATH": hostPath, "SANDBOX": domain.ChrootPlaceholder + "/x"},
		OutputFiles:    []string{"out/lib.rs"},
		OutputDirs:     []string{"out/dir"},
	}

	res, err := f.runner.Run(context.Background(), spec)
	require.NoError(t, err)

	assert.True(t, res.Succeeded())
	assert.Equal(t, "built\n", string(res.Stdout))
	assert.Equal(t, domain.OutputsPath(f.cacheDir, "build-1"), res.OutputDir)
	assert.Equal(t, []string{"out/lib.rs", "out/dir"}, res.Outputs)

	lib, err := os.ReadFile(filepath.Join(res.OutputDir, "out", "lib.rs"))
	require.NoError(t, err)
	assert.Equal(t, "fn a() {}\n", string(lib))

	where, err := os.ReadFile(filepath.Join(res.OutputDir, "out", "dir", "where"))
	require.NoError(t, err)
	sandbox := filepath.Join(domain.SandboxRootPath(f.cacheDir), "build-1")
	assert.Equal(t, sandbox+"/x\n", string(where))

	_, err = os.Stat(sandbox)
	assert.True(t, os.IsNotExist(err), "sandbox should be removed")
}

func TestRunner_Run_NonZeroExit(t *testing.T) {
	f := newRunnerFixture(t, false)

	res, err := f.runner.Run(context.Background(), &domain.ProcessSpec{
		Description:    "failing",
		Argv:           []string{"/bin/sh", domain.WrapperScriptName},
		GeneratedFiles: script("echo broken >&2; exit 101"),
		OutputFiles:    []string{"never"},
	})

	require.NoError(t, err)
	assert.Equal(t, 101, res.ExitCode)
	assert.False(t, res.Succeeded())
	assert.Equal(t, "broken\n", string(res.Stderr))
	assert.Empty(t, res.OutputDir)
}

func TestRunner_Run_MissingOutput(t *testing.T) {
	f := newRunnerFixture(t, false)

	_, err := f.runner.Run(context.Background(), &domain.ProcessSpec{
		Description:    "no outputs",
		Argv:           []string{"/bin/sh", domain.WrapperScriptName},
		GeneratedFiles: script("true"),
		OutputFiles:    []string{"target/release/app"},
	})

	require.ErrorContains(t, err, domain.ErrMissingOutput.Error())
	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, "target/release/app", zErr.Metadata()["path"])
	assert.Equal(t, "no outputs", zErr.Metadata()["description"])
}

func TestRunner_Run_NamedCachesAndMounts(t *testing.T) {
	f := newRunnerFixture(t, true)
	mount := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(mount, "cc"), []byte("compiler"), domain.FilePerm))

	spec := &domain.ProcessSpec{
		ID:              "caches",
		Description:     "caches",
		Argv:            []string{"/bin/sh", domain.WrapperScriptName},
		GeneratedFiles:  script("echo entry > .cargo/registry; cat shims/cc"),
		Env:             map[string]string{"PATH": hostPath},
		NamedCaches:     map[string]string{domain.CargoCache.Name: domain.CargoCache.Path},
		ImmutableMounts: map[string]string{"shims": mount},
	}

	res, err := f.runner.Run(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, "compiler", string(res.Stdout))

	entry, err := os.ReadFile(filepath.Join(domain.NamedCachePath(f.cacheDir, domain.CargoCache), "registry"))
	require.NoError(t, err)
	assert.Equal(t, "entry\n", string(entry))

	_, err = os.Stat(filepath.Join(domain.SandboxRootPath(f.cacheDir), "caches", domain.WrapperScriptName))
	assert.NoError(t, err, "sandbox should be kept")
}

func TestRunner_Run_Timeout(t *testing.T) {
	f := newRunnerFixture(t, false)

	_, err := f.runner.Run(context.Background(), &domain.ProcessSpec{
		Description:    "slow",
		Argv:           []string{"/bin/sh", domain.WrapperScriptName},
		GeneratedFiles: script("exec sleep 5"),
		Env:            map[string]string{"PATH": hostPath},
		Timeout:        50 * time.Millisecond,
	})

	require.ErrorContains(t, err, "process interrupted")
}

func TestRunner_Run_MissingInput(t *testing.T) {
	f := newRunnerFixture(t, false)

	_, err := f.runner.Run(context.Background(), &domain.ProcessSpec{
		Description: "missing input",
		Argv:        []string{"/bin/sh", domain.WrapperScriptName},
		InputFiles:  []string{"absent.rs"},
	})

	require.ErrorContains(t, err, domain.ErrSandboxSetup.Error())
	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, "absent.rs", zErr.Metadata()["path"])
}
