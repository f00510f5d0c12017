package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storm_track"

// Metrics holds the Prometheus collectors for the verification pipeline.
type Metrics struct {
	MessagesConsumed   prometheus.Counter
	MessagesProduced   prometheus.Counter
	VerificationErrors prometheus.Counter
	PipelineRunning    prometheus.Gauge

	// Per forecast fix.
	PointsVerified prometheus.Counter
	PointsSkipped  prometheus.Counter
	PositionError  prometheus.Histogram // direct great-circle error, nautical miles

	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Reverse geocoding.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

var (
	batchSizeBuckets     = []float64{1, 5, 10, 20, 30, 40, 50, 75, 100}
	batchDurationBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10}
	positionErrorBuckets = []float64{10, 25, 50, 75, 100, 150, 200, 300, 500}
	geocodeBuckets       = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
)

func newMetrics() *Metrics {
	return &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total verification requests read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total verification results written to the sink topic.",
		}),
		VerificationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verification_errors_total",
			Help:      "Total requests that could not be verified.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		PointsVerified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_verified_total",
			Help:      "Forecast fixes compared against the observed track.",
		}),
		PointsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_skipped_total",
			Help:      "Forecast fixes outside the observed track or missing a time or position.",
		}),
		PositionError: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "position_error_nautical_miles",
			Help:      "Direct distance between forecast and observed positions.",
			Buckets:   positionErrorBuckets,
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   batchSizeBuckets,
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-verify-load cycle.",
			Buckets:   batchDurationBuckets,
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Reverse geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   geocodeBuckets,
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when geocoding enrichment is enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.MessagesConsumed,
		m.MessagesProduced,
		m.VerificationErrors,
		m.PipelineRunning,
		m.PointsVerified,
		m.PointsSkipped,
		m.PositionError,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}
