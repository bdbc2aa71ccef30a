// Package metrics holds the Prometheus collectors for the QR menu API.
//
// Every recording method is safe on a nil *Metrics, so components can run
// with metrics disabled without branching.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "qrmenu"

// Outcome labels
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeTooLarge = "too_large"
	OutcomeError    = "error"
)

// Metrics owns a private registry and the application collectors
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	menusSaved      *prometheus.CounterVec
	payloadDecodes  *prometheus.CounterVec
	publishes       *prometheus.CounterVec
	builderSessions prometheus.Gauge
	storeUp         *prometheus.GaugeVec
}

// New creates the collectors and registers them with a fresh registry
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route pattern, and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by method and route pattern",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		menusSaved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "menus_saved_total",
				Help:      "Menu save attempts by store driver and outcome",
			},
			[]string{"driver", "outcome"},
		),
		payloadDecodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payload_decodes_total",
				Help:      "Share link payload decodes by outcome",
			},
			[]string{"outcome"},
		),
		publishes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "publishes_total",
				Help:      "Share link publish attempts by outcome",
			},
			[]string{"outcome"},
		),
		builderSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "builder_sessions_active",
				Help:      "Open websocket builder sessions",
			},
		),
		storeUp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "store_up",
				Help:      "Whether the last store probe succeeded",
			},
			[]string{"driver"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.menusSaved,
		m.payloadDecodes,
		m.publishes,
		m.builderSessions,
		m.storeUp,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one completed HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// MenuSaved records a save attempt against a store driver
func (m *Metrics) MenuSaved(driver, outcome string) {
	if m == nil {
		return
	}
	m.menusSaved.WithLabelValues(driver, outcome).Inc()
}

// PayloadDecoded records a share link decode
func (m *Metrics) PayloadDecoded(outcome string) {
	if m == nil {
		return
	}
	m.payloadDecodes.WithLabelValues(outcome).Inc()
}

// Published records a publish attempt
func (m *Metrics) Published(outcome string) {
	if m == nil {
		return
	}
	m.publishes.WithLabelValues(outcome).Inc()
}

// SessionOpened increments the active builder session gauge
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.builderSessions.Inc()
}

// SessionClosed decrements the active builder session gauge
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.builderSessions.Dec()
}

// StoreProbed records the result of a background store ping
func (m *Metrics) StoreProbed(driver string, up bool) {
	if m == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	m.storeUp.WithLabelValues(driver).Set(v)
}
