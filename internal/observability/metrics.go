package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storm_track"

// Metrics holds the Prometheus counters, histograms, and gauges for dataset
// loading and exposure queries.
type Metrics struct {
	// Load metrics.
	DatasetLoads         *prometheus.CounterVec // labels: outcome={success,parse_error,source_error}
	LoadDuration         prometheus.Histogram
	TracksRetained       prometheus.Gauge
	ObservationsRetained prometheus.Gauge
	TracksDiscarded      prometheus.Gauge
	ObservationsExpired  prometheus.Gauge
	SnapshotGeneration   prometheus.Gauge

	// Query metrics.
	Queries       *prometheus.CounterVec // labels: outcome={hit,empty}
	QueryDuration prometheus.Histogram
	QueryCache    *prometheus.CounterVec // labels: result={hit,miss}

	// Publication metrics.
	TracksPublished prometheus.Counter
	PublishErrors   prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DatasetLoads,
		m.LoadDuration,
		m.TracksRetained,
		m.ObservationsRetained,
		m.TracksDiscarded,
		m.ObservationsExpired,
		m.SnapshotGeneration,
		m.Queries,
		m.QueryDuration,
		m.QueryCache,
		m.TracksPublished,
		m.PublishErrors,
	)
	return m
}

// NewUnregisteredMetrics creates Metrics that are never exported, for
// one-shot tools such as cmd/stormquery.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Dataset load attempts by outcome.",
		}, []string{"outcome"}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of a full fetch-parse-filter cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		TracksRetained: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracks_retained",
			Help:      "Tracks in the active snapshot.",
		}),
		ObservationsRetained: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "observations_retained",
			Help:      "Observations in the active snapshot.",
		}),
		TracksDiscarded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracks_discarded",
			Help:      "Tracks dropped by the minimum-length rule in the last load.",
		}),
		ObservationsExpired: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "observations_expired",
			Help:      "Observations dropped by the recency window in the last load.",
		}),
		SnapshotGeneration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_generation",
			Help:      "Monotonic generation of the active snapshot; 0 before the first load.",
		}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Exposure queries by outcome.",
		}, []string{"outcome"}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Duration of intersect-aggregate-rank for one point.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		QueryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_total",
			Help:      "Query result cache lookups by result.",
		}, []string{"result"}),
		TracksPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracks_published_total",
			Help:      "Tracks written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed track publications.",
		}),
	}
}
