// Package metrics owns the Prometheus registry for the content server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerMetrics holds the collectors exposed at /metrics.
type ServerMetrics struct {
	reg          *prometheus.Registry
	handler      http.Handler
	inflight     prometheus.Gauge
	reqTotal     *prometheus.CounterVec
	reqDur       *prometheus.HistogramVec
	panicTotal   prometheus.Counter
	loginTotal   *prometheus.CounterVec
	contentTotal *prometheus.CounterVec
	rateLimited  prometheus.Counter
}

// New returns a fresh registry with the Go and process collectors plus the
// HTTP and domain metrics. Labels stay low-cardinality: route is the chi
// pattern, never the raw path of a matched route.
func New() *ServerMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &ServerMetrics{
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Current number of in-flight HTTP requests",
		}),
		reqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route, and status",
		}, []string{"method", "route", "status"}),
		reqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency by method and route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),
		panicTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_panic_total",
			Help: "Total number of recovered handler panics",
		}),
		loginTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_login_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
		contentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "content_writes_total",
			Help: "Content write operations by kind",
		}, []string{"op"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_requests_rate_limited_total",
			Help: "Total requests rejected by the login rate limiter",
		}),
	}
	reg.MustRegister(
		m.inflight,
		m.reqTotal,
		m.reqDur,
		m.panicTotal,
		m.loginTotal,
		m.contentTotal,
		m.rateLimited,
	)

	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	m.reg = reg
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *ServerMetrics) Handler() http.Handler {
	return m.handler
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *ServerMetrics) Registry() *prometheus.Registry {
	return m.reg
}

func (m *ServerMetrics) IncPanic() {
	m.panicTotal.Inc()
}

// IncLogin records a login attempt. result is "success", "failure" or "error".
func (m *ServerMetrics) IncLogin(result string) {
	m.loginTotal.WithLabelValues(result).Inc()
}

// IncContentWrite records a content write. op is "put" or "seed".
func (m *ServerMetrics) IncContentWrite(op string) {
	m.contentTotal.WithLabelValues(op).Inc()
}

func (m *ServerMetrics) IncRateLimited() {
	m.rateLimited.Inc()
}
