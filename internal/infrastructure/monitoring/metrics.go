package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the serving surface.
type Metrics struct {
	LifecycleOps    *prometheus.CounterVec
	ScoreRequests   *prometheus.CounterVec
	ScoreLatency    *prometheus.HistogramVec
	ModelCacheHits  *prometheus.CounterVec
	TrainingRuns    *prometheus.CounterVec
	TrainingSeconds prometheus.Histogram
	HTTPRequests    *prometheus.CounterVec
	HTTPLatency     *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers the collectors on an explicit registry. Tests use
// a fresh one per case.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LifecycleOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crs_service_lifecycle_operations_total",
				Help: "Total service lifecycle operations by kind and result.",
			},
			[]string{"operation", "result"},
		),
		ScoreRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crs_score_requests_total",
				Help: "Total score invocations by service and result.",
			},
			[]string{"service", "result"},
		),
		ScoreLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crs_score_latency_seconds",
				Help:    "Latency of score invocations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service"},
		),
		ModelCacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crs_model_cache_events_total",
				Help: "In-process model ensemble cache hits and misses.",
			},
			[]string{"event"},
		),
		TrainingRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crs_training_runs_total",
				Help: "Total training runs by result.",
			},
			[]string{"result"},
		),
		TrainingSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "crs_training_duration_seconds",
				Help:    "Duration of training runs.",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crs_http_requests_total",
				Help: "Total HTTP requests by method, route template, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crs_http_request_duration_seconds",
				Help:    "HTTP request latency by method and route template.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// RecordLifecycleOp records one publish/update/delete/fetch outcome.
func (m *Metrics) RecordLifecycleOp(operation, result string) {
	m.LifecycleOps.WithLabelValues(operation, result).Inc()
}

// RecordScore records one invocation outcome with its latency.
func (m *Metrics) RecordScore(service, result string, duration time.Duration) {
	m.ScoreRequests.WithLabelValues(service, result).Inc()
	m.ScoreLatency.WithLabelValues(service).Observe(duration.Seconds())
}

// RecordModelCache records a cache hit or miss on the ensemble cache.
func (m *Metrics) RecordModelCache(event string) {
	m.ModelCacheHits.WithLabelValues(event).Inc()
}

// RecordHTTP records one HTTP request outcome against its route template.
func (m *Metrics) RecordHTTP(method, path, status string, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, status).Inc()
	m.HTTPLatency.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordTraining records one training run outcome with its duration.
func (m *Metrics) RecordTraining(result string, duration time.Duration) {
	m.TrainingRuns.WithLabelValues(result).Inc()
	m.TrainingSeconds.Observe(duration.Seconds())
}
