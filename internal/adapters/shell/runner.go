package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	fsadapter "go.trai.ch/porcelain/internal/adapters/fs"
	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/porcelain/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ProcessRunner = (*Runner)(nil)

// waitDelay bounds how long a cancelled process may keep its output pipes open.
const waitDelay = 2 * time.Second

// Options configures where a Runner finds inputs and keeps its sandboxes.
type Options struct {
	// Root is the build root input files are copied from.
	Root string
	// CacheDir holds sandboxes, named caches and captured outputs.
	CacheDir string
	// Keep leaves sandbox directories in place for debugging.
	Keep bool
}

// Runner implements ports.ProcessRunner by materializing each spec into a fresh sandbox directory.
type Runner struct {
	opts      Options
	logger    ports.Logger
	telemetry ports.Telemetry
	metrics   ports.Metrics
	verifier  *fsadapter.Verifier
}

// NewRunner creates a new Runner.
func NewRunner(
	opts Options,
	logger ports.Logger,
	telemetry ports.Telemetry,
	metrics ports.Metrics,
	verifier *fsadapter.Verifier,
) *Runner {
	return &Runner{
		opts:      opts,
		logger:    logger,
		telemetry: telemetry,
		metrics:   metrics,
		verifier:  verifier,
	}
}

// Run executes spec inside a sandbox. The process sees only the spec environment.
// A non-zero exit is reported through the result; outputs are captured only on success.
func (r *Runner) Run(ctx context.Context, spec *domain.ProcessSpec) (res *domain.ProcessResult, err error) {
	if len(spec.Argv) == 0 {
		return nil, zerr.With(zerr.New("empty command"), "description", spec.Description)
	}

	id := spec.ID
	if id == "" {
		id = uuid.NewString()
	}

	ctx, vertex := r.telemetry.Record(ctx, spec.Description)
	defer func() { vertex.Complete(err) }()

	sandbox := filepath.Join(domain.SandboxRootPath(r.opts.CacheDir), id)
	if err = r.prepare(sandbox, spec); err != nil {
		_ = os.RemoveAll(sandbox)
		return nil, err
	}
	if r.opts.Keep {
		r.logger.Info("sandbox kept at " + sandbox)
	} else {
		defer func() { _ = os.RemoveAll(sandbox) }()
	}

	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	env := make([]string, 0, len(spec.Env))
	for _, kv := range spec.EnvList() {
		env = append(env, strings.ReplaceAll(kv, domain.ChrootPlaceholder, sandbox))
	}

	executable := spec.Argv[0]
	if !strings.Contains(executable, "/") {
		if lp, lookErr := lookPath(executable, env); lookErr == nil {
			executable = lp
		}
	} else if !filepath.IsAbs(executable) {
		executable = filepath.Join(sandbox, executable)
	}

	cmd := exec.CommandContext(ctx, executable, spec.Argv[1:]...) //nolint:gosec // Argv comes from the process builder
	cmd.Args[0] = spec.Argv[0]
	cmd.Dir = sandbox
	cmd.Env = env
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = io.MultiWriter(&stdout, vertex.Stdout())
	cmd.Stderr = io.MultiWriter(&stderr, vertex.Stderr())

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	res = &domain.ProcessResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: duration,
	}

	if runErr != nil {
		if ctx.Err() != nil {
			err = zerr.With(zerr.Wrap(ctx.Err(), "process interrupted"), "description", spec.Description)
			return nil, err
		}
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			err = zerr.With(zerr.Wrap(runErr, "failed to start process"), "command", spec.Argv[0])
			return nil, err
		}
		res.ExitCode = exitErr.ExitCode()
	}

	r.metrics.ObserveProcess(spec.Description, res.ExitCode, duration)
	if !res.Succeeded() {
		return res, nil
	}

	outputs := spec.Outputs()
	if len(outputs) == 0 {
		return res, nil
	}
	if err = r.verifier.VerifyOutputs(sandbox, outputs); err != nil {
		return nil, zerr.With(err, "description", spec.Description)
	}

	outDir := domain.OutputsPath(r.opts.CacheDir, id)
	if err = os.RemoveAll(outDir); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to clear outputs"), "path", outDir)
	}
	for _, output := range outputs {
		src := filepath.Join(sandbox, filepath.FromSlash(output))
		dst := filepath.Join(outDir, filepath.FromSlash(output))
		if err = copyPath(src, dst); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to capture output"), "path", output)
		}
	}
	res.OutputDir = outDir
	res.Outputs = outputs

	return res, nil
}

// prepare materializes inputs, generated files, named caches and mounts into a fresh sandbox.
func (r *Runner) prepare(sandbox string, spec *domain.ProcessSpec) error {
	wrap := func(err error, path string) error {
		return zerr.With(zerr.Wrap(err, domain.ErrSandboxSetup.Error()), "path", path)
	}

	if err := os.RemoveAll(sandbox); err != nil {
		return wrap(err, sandbox)
	}
	if err := os.MkdirAll(sandbox, domain.DirPerm); err != nil {
		return wrap(err, sandbox)
	}

	for _, input := range spec.InputFiles {
		src := filepath.Join(r.opts.Root, filepath.FromSlash(input))
		if err := copyFile(src, filepath.Join(sandbox, filepath.FromSlash(input))); err != nil {
			return wrap(err, input)
		}
	}

	for rel, content := range spec.GeneratedFiles {
		dst := filepath.Join(sandbox, filepath.FromSlash(rel))
		perm := os.FileMode(domain.FilePerm)
		if strings.HasSuffix(rel, ".sh") {
			perm = domain.ExecPerm
		}
		if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
			return wrap(err, rel)
		}
		if err := os.WriteFile(dst, content, perm); err != nil {
			return wrap(err, rel)
		}
		if err := os.Chmod(dst, perm); err != nil {
			return wrap(err, rel)
		}
	}

	for name, rel := range spec.NamedCaches {
		host := domain.NamedCachePath(r.opts.CacheDir, domain.NamedCache{Name: name, Path: rel})
		if err := os.MkdirAll(host, domain.DirPerm); err != nil {
			return wrap(err, host)
		}
		if err := link(host, filepath.Join(sandbox, filepath.FromSlash(rel))); err != nil {
			return wrap(err, rel)
		}
	}

	for rel, host := range spec.ImmutableMounts {
		if err := link(host, filepath.Join(sandbox, filepath.FromSlash(rel))); err != nil {
			return wrap(err, rel)
		}
	}

	return nil
}

func link(target, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return err
	}
	return os.Symlink(target, path)
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return err
	}

	in, err := os.Open(src) //nolint:gosec // Paths come from resolved inputs
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm()) //nolint:gosec // Sandbox path
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// copyPath copies a file or a directory tree. Symlinks inside directories are followed.
func copyPath(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return copyFile(src, dst)
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, domain.DirPerm)
		}
		return copyFile(path, target)
	})
}
