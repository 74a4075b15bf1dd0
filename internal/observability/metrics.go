package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// runoff engine.
type Metrics struct {
	ComputeRequests    *prometheus.CounterVec // labels: method, outcome={ok,validation_error,bad_request}
	RowsComputed       prometheus.Counter
	RowsSkipped        prometheus.Counter
	ValidationFailures prometheus.Counter

	// Batch shape and timing.
	BatchRows       prometheus.Histogram
	ComputeDuration prometheus.Histogram

	// Results publisher metrics.
	ResultsPublished prometheus.Counter
	PublishErrors    prometheus.Counter
	PublisherEnabled prometheus.Gauge
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ComputeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "runmeter",
			Name:      "compute_requests_total",
			Help:      "Compute requests by method and outcome.",
		}, []string{"method", "outcome"}),
		RowsComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runmeter",
			Name:      "rows_computed_total",
			Help:      "Total input rows successfully computed.",
		}),
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runmeter",
			Name:      "rows_skipped_total",
			Help:      "Total rows skipped due to per-row computation errors.",
		}),
		ValidationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runmeter",
			Name:      "validation_failures_total",
			Help:      "Total uploaded tables rejected by validation.",
		}),
		BatchRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "runmeter",
			Name:      "batch_rows",
			Help:      "Number of input rows per compute batch.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		ComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "runmeter",
			Name:      "compute_duration_seconds",
			Help:      "Duration of a complete validate-and-compute cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		ResultsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runmeter",
			Name:      "results_published_total",
			Help:      "Total result rows published to the results topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runmeter",
			Name:      "publish_errors_total",
			Help:      "Total failed publishes to the results topic.",
		}),
		PublisherEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "runmeter",
			Name:      "publisher_enabled",
			Help:      "1 when the Kafka results publisher is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.ComputeRequests,
		m.RowsComputed,
		m.RowsSkipped,
		m.ValidationFailures,
		m.BatchRows,
		m.ComputeDuration,
		m.ResultsPublished,
		m.PublishErrors,
		m.PublisherEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ComputeRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "runmeter", Name: "compute_requests_total"}, []string{"method", "outcome"}),
		RowsComputed:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "runmeter", Name: "rows_computed_total"}),
		RowsSkipped:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "runmeter", Name: "rows_skipped_total"}),
		ValidationFailures: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "runmeter", Name: "validation_failures_total"}),
		BatchRows:          prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "runmeter", Name: "batch_rows"}),
		ComputeDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "runmeter", Name: "compute_duration_seconds"}),
		ResultsPublished:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "runmeter", Name: "results_published_total"}),
		PublishErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "runmeter", Name: "publish_errors_total"}),
		PublisherEnabled:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "runmeter", Name: "publisher_enabled"}),
	}
}
