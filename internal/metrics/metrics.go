// Package metrics holds the Prometheus collectors for the API and the
// engagement core.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	toggles         *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	aiFallbacks     *prometheus.CounterVec
}

// New registers all collectors on a fresh registry so servers in the same
// process (tests) never collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "devsocial",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "devsocial",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		toggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "devsocial",
			Name:      "engagement_toggles_total",
			Help:      "Follow and like toggles by resulting state.",
		}, []string{"edge", "state"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "devsocial",
			Name:      "notifications_created_total",
			Help:      "Notifications emitted by kind.",
		}, []string{"type"}),
		aiFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "devsocial",
			Name:      "ai_fallbacks_total",
			Help:      "AI helper calls answered with a fallback value.",
		}, []string{"helper"}),
	}
	reg.MustRegister(
		m.requests,
		m.requestDuration,
		m.toggles,
		m.notifications,
		m.aiFallbacks,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// Toggle counts a follow/like toggle ending in state.
func (m *Metrics) Toggle(edge, state string) {
	if m == nil {
		return
	}
	m.toggles.WithLabelValues(edge, state).Inc()
}

func (m *Metrics) Notification(kind string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind).Inc()
}

func (m *Metrics) AIFallback(helper string) {
	if m == nil {
		return
	}
	m.aiFallbacks.WithLabelValues(helper).Inc()
}
