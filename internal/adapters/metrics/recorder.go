// Package metrics records install, process and goal metrics.
package metrics

import (
	"strconv"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.trai.ch/porcelain/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.Metrics = (*PrometheusRecorder)(nil)
	_ ports.Metrics = NoopRecorder{}
)

// PrometheusRecorder implements ports.Metrics using Prometheus metrics on a private registry.
type PrometheusRecorder struct {
	once            sync.Once
	reg             *prom.Registry
	installDuration *prom.HistogramVec
	installResults  *prom.CounterVec
	processDuration *prom.HistogramVec
	processResults  *prom.CounterVec
	goalOutcomes    *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the metrics. A nil registry gets a fresh one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.once.Do(func() {
		pr.installDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "porcelain",
			Name:      "toolchain_install_duration_seconds",
			Help:      "Duration of toolchain installs",
			Buckets:   []float64{0.1, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"target", "result"})
		pr.installResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "porcelain",
			Name:      "toolchain_installs_total",
			Help:      "Toolchain install results",
		}, []string{"target", "result"})
		pr.processDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "porcelain",
			Name:      "process_duration_seconds",
			Help:      "Duration of sandboxed toolchain processes",
			Buckets:   prom.DefBuckets,
		}, []string{"description"})
		pr.processResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "porcelain",
			Name:      "process_exits_total",
			Help:      "Sandboxed process exit codes",
		}, []string{"exit_code"})
		pr.goalOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "porcelain",
			Name:      "goal_outcomes_total",
			Help:      "Goal partition outcomes",
		}, []string{"goal", "outcome"})
		reg.MustRegister(pr.installDuration, pr.installResults, pr.processDuration, pr.processResults, pr.goalOutcomes)
	})
	return pr
}

// Registry returns the registry holding the recorder's metrics.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.reg
}

// ObserveInstall records one toolchain install attempt.
func (p *PrometheusRecorder) ObserveInstall(target string, d time.Duration, err error) {
	if p == nil || p.installResults == nil {
		return
	}
	res := "success"
	if err != nil {
		res = "failed"
	}
	p.installDuration.WithLabelValues(target, res).Observe(d.Seconds())
	p.installResults.WithLabelValues(target, res).Inc()
}

// ObserveProcess records one sandboxed process.
func (p *PrometheusRecorder) ObserveProcess(description string, exitCode int, d time.Duration) {
	if p == nil || p.processResults == nil {
		return
	}
	p.processDuration.WithLabelValues(description).Observe(d.Seconds())
	p.processResults.WithLabelValues(strconv.Itoa(exitCode)).Inc()
}

// ObserveGoal records one goal partition outcome.
func (p *PrometheusRecorder) ObserveGoal(goal, outcome string) {
	if p == nil || p.goalOutcomes == nil {
		return
	}
	p.goalOutcomes.WithLabelValues(goal, outcome).Inc()
}

// WriteTextfile writes a text exposition snapshot of the recorder's registry.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write metrics"), "path", path)
	}
	return nil
}

// NoopRecorder discards all observations.
type NoopRecorder struct{}

// ObserveInstall does nothing.
func (NoopRecorder) ObserveInstall(string, time.Duration, error) {}

// ObserveProcess does nothing.
func (NoopRecorder) ObserveProcess(string, int, time.Duration) {}

// ObserveGoal does nothing.
func (NoopRecorder) ObserveGoal(string, string) {}
