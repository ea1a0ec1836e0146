// Package metrics provides the Prometheus implementation of ports.Metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

const namespace = "ferry"

var durationBuckets = []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 2400}

// Recorder collects run metrics in a private registry. Runs are short-lived,
// so the registry is written as a node-exporter textfile instead of served.
type Recorder struct {
	registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	envTotal      *prometheus.CounterVec
	envDuration   *prometheus.HistogramVec
	uploadTotal   *prometheus.CounterVec
	uploadRetries *prometheus.CounterVec
	gateTotal     *prometheus.CounterVec
}

var _ ports.Metrics = (*Recorder)(nil)

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages",
			Buckets:   durationBuckets,
		}, []string{"stage", "ok"}),
		envTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "environments_total",
			Help:      "Number of finished build environments by outcome",
		}, []string{"outcome"}),
		envDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "environment_duration_seconds",
			Help:      "Duration of build environments",
			Buckets:   durationBuckets,
		}, []string{"outcome"}),
		uploadTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Number of artifact uploads by provider and result",
		}, []string{"provider", "ok"}),
		uploadRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_retries_total",
			Help:      "Number of upload attempts beyond the first",
		}, []string{"provider"}),
		gateTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deploy_gate_decisions_total",
			Help:      "Number of deploy gate decisions by result",
		}, []string{"decision"}),
	}

	r.registry.MustRegister(
		r.stageDuration, r.envTotal, r.envDuration,
		r.uploadTotal, r.uploadRetries, r.gateTotal,
	)
	return r
}

// ObserveStage records the duration of a finished stage.
func (r *Recorder) ObserveStage(stage domain.StageName, ok bool, d time.Duration) {
	r.stageDuration.With(prometheus.Labels{
		"stage": string(stage),
		"ok":    strconv.FormatBool(ok),
	}).Observe(d.Seconds())
}

// ObserveEnvironment records a finished environment.
func (r *Recorder) ObserveEnvironment(outcome domain.OutcomeKind, d time.Duration) {
	labels := prometheus.Labels{"outcome": outcome.String()}
	r.envTotal.With(labels).Inc()
	r.envDuration.With(labels).Observe(d.Seconds())
}

// ObserveUpload records an upload and the attempts it took.
func (r *Recorder) ObserveUpload(provider string, ok bool, attempts int) {
	r.uploadTotal.With(prometheus.Labels{
		"provider": provider,
		"ok":       strconv.FormatBool(ok),
	}).Inc()
	if attempts > 1 {
		r.uploadRetries.With(prometheus.Labels{"provider": provider}).Add(float64(attempts - 1))
	}
}

// ObserveGate records a deploy gate decision.
func (r *Recorder) ObserveGate(decision domain.Decision) {
	label := "open"
	if !decision.Open {
		label = decision.Reason
	}
	r.gateTotal.With(prometheus.Labels{"decision": label}).Inc()
}

// Flush writes the registry to path in the Prometheus text format.
func (r *Recorder) Flush(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write metrics textfile"), "path", path)
	}
	return nil
}
