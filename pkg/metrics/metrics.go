// Package metrics exposes Prometheus instrumentation for the aggregation
// pipeline. A Metrics value owns its own registry so tests can create
// isolated instances without clashing on the global default registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes recorded on citydata_fetch_total.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
)

// Metrics bundles the collectors used by the engine. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	fetches      *prometheus.CounterVec
	fetchSeconds *prometheus.HistogramVec
	aggregations prometheus.Counter
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "citydata_fetch_total",
			Help: "Upstream Spotify fetches by resource and outcome.",
		}, []string{"resource", "outcome"}),
		fetchSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "citydata_fetch_duration_seconds",
			Help:    "Latency of upstream Spotify fetches.",
			Buckets: prometheus.DefBuckets,
		}, []string{"resource"}),
		aggregations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "citydata_aggregations_total",
			Help: "Completed city data aggregations.",
		}),
	}
	m.registry.MustRegister(
		m.fetches,
		m.fetchSeconds,
		m.aggregations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveFetch records one upstream call.
func (m *Metrics) ObserveFetch(resource, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(resource, outcome).Inc()
	m.fetchSeconds.WithLabelValues(resource).Observe(d.Seconds())
}

// IncAggregations counts a finished aggregation.
func (m *Metrics) IncAggregations() {
	if m == nil {
		return
	}
	m.aggregations.Inc()
}

// FetchCount returns the citydata_fetch_total child for the label pair. On a
// nil *Metrics it returns an unregistered counter reading zero.
func (m *Metrics) FetchCount(resource, outcome string) prometheus.Counter {
	if m == nil {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: "citydata_fetch_total"})
	}
	return m.fetches.WithLabelValues(resource, outcome)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
