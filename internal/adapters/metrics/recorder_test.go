package metrics_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/porcelain/internal/adapters/metrics"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := metrics.NewPrometheusRecorder(reg)

	pr.ObserveInstall("x86_64-unknown-linux-gnu", 12*time.Second, nil)
	pr.ObserveInstall("x86_64-unknown-linux-gnu", time.Second, errors.New("exit status 1"))
	pr.ObserveProcess("cargo build rust/app", 0, 3*time.Second)
	pr.ObserveProcess("cargo test rust/app", 101, time.Second)
	pr.ObserveGoal("test", "failed")
	pr.ObserveGoal("test", "no work found")
	pr.ObserveGoal("test", "no work found")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 5)

	series := make(map[string]int)
	for _, mf := range mfs {
		series[mf.GetName()] = len(mf.GetMetric())
	}
	assert.Equal(t, 2, series["porcelain_goal_outcomes_total"])
	assert.Equal(t, 2, series["porcelain_toolchain_installs_total"], "success and failure are separate series")
	assert.Equal(t, 2, series["porcelain_process_exits_total"])
}

func TestPrometheusRecorder_WriteTextfile(t *testing.T) {
	pr := metrics.NewPrometheusRecorder(nil)
	pr.ObserveGoal("fmt", "succeeded")

	path := filepath.Join(t.TempDir(), "porcelain.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `porcelain_goal_outcomes_total{goal="fmt",outcome="succeeded"} 1`)
}

func TestNilAndNoopRecorders(t *testing.T) {
	var pr *metrics.PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.ObserveGoal("lint", "succeeded")
		pr.ObserveInstall("aarch64-apple-darwin", time.Second, nil)
		pr.ObserveProcess("cargo fmt", 0, time.Second)

		var noop metrics.NoopRecorder
		noop.ObserveGoal("lint", "succeeded")
		noop.ObserveInstall("aarch64-apple-darwin", time.Second, nil)
		noop.ObserveProcess("cargo fmt", 0, time.Second)
	})
}
