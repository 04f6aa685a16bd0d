// Package metrics counts job outcomes and can dump them as a
// node-exporter textfile at the end of a run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"lastzrun/internal/lastz"
	"lastzrun/internal/runner"
)

const namespace = "lastzrun"

// Recorder implements runner.Observer on a private registry.
type Recorder struct {
	reg *prometheus.Registry

	started    prometheus.Counter
	finished   *prometheus.CounterVec
	duration   prometheus.Histogram
	partitions prometheus.Gauge
}

var _ runner.Observer = (*Recorder)(nil)

func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_started_total",
			Help:      "The total number of alignment jobs handed to a worker.",
		}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_finished_total",
			Help:      "The total number of alignment jobs finished, by outcome.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Wall time of each alignment process.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 14),
		}),
		partitions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "partitions",
			Help:      "Number of partitions enumerated for the run.",
		}),
	}
	r.reg.MustRegister(r.started, r.finished, r.duration, r.partitions)
	return r
}

func (r *Recorder) SetPartitions(n int) { r.partitions.Set(float64(n)) }

func (r *Recorder) JobStarted(lastz.JobCommand) { r.started.Inc() }

func (r *Recorder) JobFinished(_ lastz.JobCommand, res runner.Result, err error) {
	switch {
	case err != nil:
		r.finished.WithLabelValues("launch_error").Inc()
		return
	case res.ExitCode != 0:
		r.finished.WithLabelValues("nonzero").Inc()
	default:
		r.finished.WithLabelValues("ok").Inc()
	}
	r.duration.Observe(res.Duration.Seconds())
}

// Registry exposes the underlying registry for tests and embedding.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// WriteTextfile atomically writes all metrics to path in the text format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
