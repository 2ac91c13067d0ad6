// Package metrics exposes Prometheus collectors for the tracker.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "expenses"

type Metrics struct {
	registry *prometheus.Registry

	mutations          *prometheus.CounterVec
	stored             prometheus.Gauge
	validationFailures *prometheus.CounterVec
	exports            *prometheus.CounterVec
	chartCache         *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "mutations_total",
			Help:      "Persisted store mutations by operation.",
		}, []string{"op"}),
		stored: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "records",
			Help:      "Number of records currently stored.",
		}),
		validationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "form",
			Name:      "validation_failures_total",
			Help:      "Rejected submissions by failing field.",
		}, []string{"field"}),
		exports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "requests_total",
			Help:      "CSV export requests by outcome.",
		}, []string{"outcome"}),
		chartCache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chart",
			Name:      "cache_lookups_total",
			Help:      "Chart cache lookups by result.",
		}, []string{"result"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		}, []string{"route", "status"}),
	}
}

func (m *Metrics) ObserveMutation(op string, stored int) {
	m.mutations.WithLabelValues(op).Inc()
	m.stored.Set(float64(stored))
}

func (m *Metrics) SetStored(n int) {
	m.stored.Set(float64(n))
}

func (m *Metrics) ObserveValidationFailure(fields []string) {
	for _, f := range fields {
		m.validationFailures.WithLabelValues(f).Inc()
	}
}

func (m *Metrics) ObserveExport(empty bool) {
	outcome := "ok"
	if empty {
		outcome = "empty"
	}
	m.exports.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveChartCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.chartCache.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	m.requestDuration.
		WithLabelValues(route, strconv.Itoa(status)).
		Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
