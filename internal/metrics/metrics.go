// Package metrics instruments resolution runs. Collectors live on a private
// registry and are dumped in text exposition format on demand, so one-shot
// runs can hand results to a textfile collector instead of exposing a
// scrape endpoint.
package metrics

import (
	"os"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Recorder owns the resolution collectors.
type Recorder struct {
	registry *prometheus.Registry

	resolutions      *prometheus.CounterVec
	resolvedPackages prometheus.Counter
	conflicts        *prometheus.CounterVec
	duration         prometheus.Histogram
}

// NewRecorder creates a recorder with a private registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yapr_resolutions_total",
			Help: "Count of resolution runs by result (success/failure)",
		}, []string{"result"}),
		resolvedPackages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yapr_resolved_packages_total",
			Help: "Total packages resolved across runs",
		}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yapr_conflicts_total",
			Help: "Count of detected version conflicts by severity",
		}, []string{"severity"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "yapr_resolution_duration_seconds",
			Help:    "Resolution duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-4, 2, 14),
		}),
	}

	r.registry.MustRegister(r.resolutions, r.resolvedPackages, r.conflicts, r.duration)
	return r
}

// RecordSuccess records a completed resolution.
func (r *Recorder) RecordSuccess(packages int, seconds float64) {
	r.resolutions.WithLabelValues("success").Inc()
	r.resolvedPackages.Add(float64(packages))
	r.duration.Observe(seconds)
}

// RecordFailure records an aborted resolution.
func (r *Recorder) RecordFailure() {
	r.resolutions.WithLabelValues("failure").Inc()
}

// RecordConflict records one detected conflict.
func (r *Recorder) RecordConflict(severity string) {
	r.conflicts.WithLabelValues(severity).Inc()
}

// WriteFile gathers the registry and writes it to path in text exposition
// format.
func (r *Recorder) WriteFile(path string) error {
	families, err := r.registry.Gather()
	if err != nil {
		return errors.Wrap(err, "gathering metrics")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating metrics file")
	}
	defer f.Close()

	for _, fam := range families {
		if _, err := expfmt.MetricFamilyToText(f, fam); err != nil {
			return errors.Wrap(err, "writing metrics")
		}
	}
	return nil
}
