package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the attribution service.
type Metrics struct {
	// Request metrics
	Requests       *prometheus.CounterVec
	RequestLatency *prometheus.HistogramVec

	// Raw-data fetch metrics
	FetchFailures *prometheus.CounterVec
	FetchLatency  *prometheus.HistogramVec

	// Attribution compute metrics
	ComputeLatency   *prometheus.HistogramVec
	EventsAggregated *prometheus.CounterVec

	// Commission resolution
	CommissionFallbacks *prometheus.CounterVec

	// Cache
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// System metrics
	DBConnections *prometheus.GaugeVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		Requests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of metrics requests served",
			},
			[]string{"endpoint", "status"},
		),
		RequestLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Request latency by endpoint",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		FetchFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_failures_total",
				Help:      "Raw-data fetches that failed and aborted a request",
			},
			[]string{"source"},
		),
		FetchLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Raw-data fetch latency by source",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"source"},
		),
		ComputeLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "compute_duration_seconds",
				Help:      "In-memory aggregation latency by operation",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25},
			},
			[]string{"operation"},
		),
		EventsAggregated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_aggregated_total",
				Help:      "Canonical events processed by aggregation",
			},
			[]string{"operation"},
		),
		CommissionFallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commission_fallbacks_total",
				Help:      "Commission resolutions that degraded past a strategy",
			},
			[]string{"strategy"},
		),
		CacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Cache hits by cache name",
			},
			[]string{"cache"},
		),
		CacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Cache misses by cache name",
			},
			[]string{"cache"},
		),
		DBConnections: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections",
				Help:      "Database connection pool state",
			},
			[]string{"state"},
		),
	}

	DefaultMetrics = m
	return m
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest records one served request.
func (m *Metrics) RecordRequest(endpoint string, status int, latency time.Duration) {
	m.Requests.WithLabelValues(endpoint, httpStatusClass(status)).Inc()
	m.RequestLatency.WithLabelValues(endpoint).Observe(latency.Seconds())
}

// RecordFetch records a completed raw-data fetch.
func (m *Metrics) RecordFetch(source string, latency time.Duration, err error) {
	m.FetchLatency.WithLabelValues(source).Observe(latency.Seconds())
	if err != nil {
		m.FetchFailures.WithLabelValues(source).Inc()
	}
}

// RecordCompute records one in-memory aggregation pass.
func (m *Metrics) RecordCompute(operation string, events int, latency time.Duration) {
	m.ComputeLatency.WithLabelValues(operation).Observe(latency.Seconds())
	m.EventsAggregated.WithLabelValues(operation).Add(float64(events))
}

// UpdateDBStats updates database connection metrics.
func (m *Metrics) UpdateDBStats(idle, inUse, total int) {
	m.DBConnections.WithLabelValues("idle").Set(float64(idle))
	m.DBConnections.WithLabelValues("in_use").Set(float64(inUse))
	m.DBConnections.WithLabelValues("total").Set(float64(total))
}

func httpStatusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
