// Package metrics records the progress of a generation run with Prometheus
// collectors. A batch job has no scrape endpoint, so the registry is written
// to a file in the node_exporter textfile format when the run ends.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gogpu/mnistseq"
)

// Run holds the collectors of one generation run on a private registry.
type Run struct {
	reg *prometheus.Registry

	samples      *prometheus.CounterVec
	groupSeconds prometheus.Histogram
	splitSamples *prometheus.GaugeVec
	lastSuccess  prometheus.Gauge
}

// New creates the collectors and registers them.
func New() *Run {
	r := &Run{
		reg: prometheus.NewRegistry(),
		samples: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mnistseq_samples_generated_total",
				Help: "Number of composited samples, by sequence length.",
			},
			[]string{"length"},
		),
		groupSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mnistseq_group_duration_seconds",
				Help:    "Time to draw and composite one sequence-length group.",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
		),
		splitSamples: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mnistseq_split_samples",
				Help: "Number of samples in each persisted partition.",
			},
			[]string{"split"},
		),
		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mnistseq_last_success_timestamp_seconds",
				Help: "Unix time the last run completed successfully.",
			},
		),
	}
	r.reg.MustRegister(r.samples, r.groupSeconds, r.splitSamples, r.lastSuccess)
	return r
}

// Registry returns the registry holding the run's collectors.
func (r *Run) Registry() *prometheus.Registry {
	return r.reg
}

// Hooks returns sampler hooks that feed the collectors.
func (r *Run) Hooks() mnistseq.Hooks {
	return mnistseq.Hooks{
		OnGroup: func(length, samples int, elapsed time.Duration) {
			r.samples.WithLabelValues(strconv.Itoa(length)).Add(float64(samples))
			r.groupSeconds.Observe(elapsed.Seconds())
		},
	}
}

// ObserveSplits records the size of each partition.
func (r *Run) ObserveSplits(s mnistseq.Splits) {
	r.splitSamples.WithLabelValues("train").Set(float64(s.Train.N))
	r.splitSamples.WithLabelValues("test").Set(float64(s.Test.N))
	r.splitSamples.WithLabelValues("valid").Set(float64(s.Valid.N))
}

// MarkSuccess records the completion time of the run.
func (r *Run) MarkSuccess(t time.Time) {
	r.lastSuccess.Set(float64(t.Unix()))
}

// WriteTextfile writes the registry to path atomically.
func (r *Run) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
