// Package metrics defines the Prometheus metrics of the server.
//
// Naming follows Prometheus conventions: a bacheca_ prefix and a _total
// suffix for counters. Every recording method is safe on a nil *Metrics, so
// components can run without instrumentation.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcomes.
const (
	LoginSuccess = "success"
	LoginInvalid = "invalid"
	LoginError   = "error"
)

// Session resolution outcomes.
const (
	ResolveValid    = "valid"
	ResolveEmpty    = "empty"
	ResolveMissing  = "missing"
	ResolveExpired  = "expired"
	ResolveOrphaned = "orphaned"
	ResolveError    = "error"
)

// Metrics groups the counters of the server. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	LoginsTotal        *prometheus.CounterVec
	ResolutionsTotal   *prometheus.CounterVec
	RevocationsTotal   *prometheus.CounterVec
	SessionsSweptTotal prometheus.Counter
	RequestsTotal      *prometheus.CounterVec
}

// New registers all metrics, plus the Go and process collectors, on a
// private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bacheca_logins_total",
				Help: "Login attempts by outcome.",
			},
			[]string{"result"},
		),
		ResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bacheca_session_resolutions_total",
				Help: "Session token resolutions by outcome.",
			},
			[]string{"result"},
		),
		RevocationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bacheca_sessions_revoked_total",
				Help: "Sessions removed by logout, password change or account deletion.",
			},
			[]string{"reason"},
		),
		SessionsSweptTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bacheca_sessions_swept_total",
				Help: "Expired sessions removed by the background sweep.",
			},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bacheca_http_requests_total",
				Help: "HTTP requests by route and status code.",
			},
			[]string{"method", "route", "code"},
		),
	}

	m.registry.MustRegister(
		m.LoginsTotal,
		m.ResolutionsTotal,
		m.RevocationsTotal,
		m.SessionsSweptTotal,
		m.RequestsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordLogin(result string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordResolve(result string) {
	if m == nil {
		return
	}
	m.ResolutionsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordRevoked(reason string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.RevocationsTotal.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) RecordSwept(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.SessionsSweptTotal.Add(float64(n))
}

func (m *Metrics) RecordRequest(method, route string, code int) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}
