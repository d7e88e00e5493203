// Package metrics owns the Prometheus registry and the collectors of the
// classification pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "phishguard"

// Classification outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeUnavailable = "unavailable"
	OutcomeMalformed   = "malformed"
	OutcomeRejected    = "rejected" // refused before reaching the oracle
	OutcomeAbandoned   = "abandoned"
)

// Metrics is safe for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	classifications *prometheus.CounterVec
	oracleDuration  prometheus.Histogram
	records         prometheus.Gauge
	queries         *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New builds a registry with the Go and process collectors plus the pipeline metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "URL classifications by outcome.",
		}, []string{"outcome"}),
		oracleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_request_duration_seconds",
			Help:      "Latency of analysis oracle calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "threat_records",
			Help:      "Records currently held in the threat history.",
		}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "explorer_queries_total",
			Help:      "Explorer queries by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	registry.MustRegister(m.classifications, m.oracleDuration, m.records, m.queries, m.httpRequests, m.httpDuration)
	return m
}

// ObserveClassification records one Classify call. Rejected calls never reach
// the oracle, so their duration is not observed.
func (m *Metrics) ObserveClassification(outcome string, d time.Duration) {
	m.classifications.WithLabelValues(outcome).Inc()
	if outcome != OutcomeRejected {
		m.oracleDuration.Observe(d.Seconds())
	}
}

// SetRecords publishes the current history size.
func (m *Metrics) SetRecords(n int) { m.records.Set(float64(n)) }

// ObserveQuery counts one explorer query; ok is false for invalid criteria.
func (m *Metrics) ObserveQuery(ok bool) {
	result := "ok"
	if !ok {
		result = "invalid"
	}
	m.queries.WithLabelValues(result).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, code string, d time.Duration) {
	m.httpRequests.WithLabelValues(route, code).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler exposes the registry in the Prometheus text and OpenMetrics formats.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
