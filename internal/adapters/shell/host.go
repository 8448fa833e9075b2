// Package shell runs commands on the host and sandboxed processes.
package shell

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"go.trai.ch/porcelain/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.HostExecutor = (*HostExecutor)(nil)

// HostExecutor implements ports.HostExecutor using os/exec.
type HostExecutor struct {
	logger ports.Logger
}

// NewHostExecutor creates a new HostExecutor.
func NewHostExecutor(logger ports.Logger) *HostExecutor {
	return &HostExecutor{logger: logger}
}

// Exec runs name on the host. The host environment is the base; env entries win, and a PATH entry is
// prepended to the host PATH. Standard error is streamed to the logger and attached to any failure.
func (e *HostExecutor) Exec(ctx context.Context, name string, args, env []string) ([]byte, error) {
	cmdEnv := resolveEnvironment(os.Environ(), env)

	executable := name
	if !filepath.IsAbs(name) {
		if lp, err := lookPath(name, cmdEnv); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, args...) //nolint:gosec // Installer commands are built internally
	if len(cmd.Args) > 0 {
		cmd.Args[0] = name
	}
	cmd.Env = cmdEnv

	var stdout, stderr bytes.Buffer
	progress := newLogWriter(e.logger, filepath.Base(name)+": ")
	defer progress.Flush()

	cmd.Stdout = &stdout
	cmd.Stderr = io.MultiWriter(&stderr, progress)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return stdout.Bytes(), zerr.With(zerr.Wrap(ctx.Err(), "command cancelled"), "command", name)
		}
		if _, ok := err.(*exec.ExitError); !ok {
			return nil, zerr.With(zerr.Wrap(err, "failed to start command"), "command", name)
		}

		wrapped := zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode(err))
		wrapped = zerr.With(wrapped, "command", name)
		return stdout.Bytes(), zerr.With(wrapped, "stderr", stderr.String())
	}

	return stdout.Bytes(), nil
}
