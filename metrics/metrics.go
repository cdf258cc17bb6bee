// Package metrics provides Prometheus instrumentation for both services.
//
// Each service instance owns its own registry instead of the global default
// one, so handlers and tests can create independent instances. Counters are
// never reset during the lifetime of a process.
//
// Prediction service:
//   - api_requests_total: home page renders
//   - predictions_total: classifier invocations
//   - prediction_duration_seconds: classifier latency
//   - prediction_relay_total{outcome}: relay results (delivered, upstream_error, transport_error)
//   - history_fetch_total{outcome}: /show-result reads from the storage service
//
// Storage service:
//   - db_predictions_created_total: rows inserted
//   - db_prediction_list_total{source}: list responses served from cache or store
//   - db_repository_errors_total{op}: failed repository calls
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type APIMetrics struct {
	registry *prometheus.Registry

	RequestsTotal      prometheus.Counter
	PredictionsTotal   prometheus.Counter
	PredictionDuration prometheus.Histogram
	RelayTotal         *prometheus.CounterVec
	HistoryFetchTotal  *prometheus.CounterVec
}

func NewAPIMetrics() *APIMetrics {
	reg := newRegistry()
	factory := promauto.With(reg)

	return &APIMetrics{
		registry: reg,
		RequestsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total API requests",
		}),
		PredictionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total predictions made",
		}),
		PredictionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_duration_seconds",
			Help:    "Prediction processing time",
			Buckets: prometheus.DefBuckets,
		}),
		RelayTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "prediction_relay_total",
			Help: "Predictions relayed to the storage service by outcome",
		}, []string{"outcome"}),
		HistoryFetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "history_fetch_total",
			Help: "History reads from the storage service by outcome",
		}, []string{"outcome"}),
	}
}

func (m *APIMetrics) RecordRelay(outcome string) {
	m.RelayTotal.WithLabelValues(outcome).Inc()
}

func (m *APIMetrics) RecordHistoryFetch(outcome string) {
	m.HistoryFetchTotal.WithLabelValues(outcome).Inc()
}

// Handler serves the text exposition of this instance's registry.
func (m *APIMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type DBMetrics struct {
	registry *prometheus.Registry

	PredictionsCreated prometheus.Counter
	ListTotal          *prometheus.CounterVec
	RepositoryErrors   *prometheus.CounterVec
}

func NewDBMetrics() *DBMetrics {
	reg := newRegistry()
	factory := promauto.With(reg)

	return &DBMetrics{
		registry: reg,
		PredictionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "db_predictions_created_total",
			Help: "Total prediction rows inserted",
		}),
		ListTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "db_prediction_list_total",
			Help: "Prediction list responses by source",
		}, []string{"source"}),
		RepositoryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "db_repository_errors_total",
			Help: "Failed repository operations",
		}, []string{"op"}),
	}
}

func (m *DBMetrics) RecordList(source string) {
	m.ListTotal.WithLabelValues(source).Inc()
}

func (m *DBMetrics) RecordRepositoryError(op string) {
	m.RepositoryErrors.WithLabelValues(op).Inc()
}

func (m *DBMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
