package shell_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/porcelain/internal/adapters/shell"
	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/porcelain/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func TestResolveEnvironment(t *testing.T) {
	base := []string{"PATH=/usr/bin", "HOME=/home/user", "KEEP=1"}
	overlay := []string{"PATH=/tools/bin", "HOME=/sandbox", "NEW=x", "broken"}

	got := shell.ResolveEnvironment(base, overlay)

	assert.Equal(t, []string{
		"HOME=/sandbox",
		"KEEP=1",
		"NEW=x",
		"PATH=/tools/bin" + string(os.PathListSeparator) + "/usr/bin",
	}, got)
}

func TestLookPath(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "tool")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), domain.ExecPerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data"), []byte("x"), domain.FilePerm))

	got, err := shell.LookPath("tool", []string{"PATH=/nonexistent:" + dir})
	require.NoError(t, err)
	assert.Equal(t, exe, got)

	_, err = shell.LookPath("data", []string{"PATH=" + dir})
	require.Error(t, err)

	_, err = shell.LookPath("tool", nil)
	require.Error(t, err)
}

func TestLogWriter_LineBuffering(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	gomock.InOrder(
		mockLogger.EXPECT().Info("rustup: info: syncing channel"),
		mockLogger.EXPECT().Info("rustup: info: done"),
		mockLogger.EXPECT().Info("rustup: partial"),
	)

	w := shell.NewLogWriter(mockLogger, "rustup: ")
	_, err := w.Write([]byte("info: syncing "))
	require.NoError(t, err)
	_, err = w.Write([]byte("channel\r\n\ninfo: done\npartial"))
	require.NoError(t, err)
	w.Flush()
	w.Flush()
}

func TestHostExecutor_Exec(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info("sh: progress").Times(1)

	exec := shell.NewHostExecutor(mockLogger)
	out, err := exec.Exec(context.Background(), "sh",
		[]string{"-c", `echo "$GREETING"; echo progress >&2`},
		[]string{"GREETING=hello"})

	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))
}

func TestHostExecutor_Exec_Failure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()

	exec := shell.NewHostExecutor(mockLogger)
	_, err := exec.Exec(context.Background(), "sh", []string{"-c", "echo nope >&2; exit 3"}, nil)

	require.ErrorContains(t, err, "command failed")
	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, 3, zErr.Metadata()["exit_code"])
	assert.Equal(t, "nope\n", zErr.Metadata()["stderr"])
	assert.Equal(t, "sh", zErr.Metadata()["command"])
}

func TestHostExecutor_Exec_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := shell.NewHostExecutor(mocks.NewMockLogger(ctrl))

	_, err := exec.Exec(context.Background(), "/nonexistent/porcelain-tool", nil, nil)

	require.ErrorContains(t, err, "failed to start command")
	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, "/nonexistent/porcelain-tool", zErr.Metadata()["command"])
}
