// Package metrics exposes Prometheus collectors for the API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	AuthAttempts      *prometheus.CounterVec
	AppointmentEvents *prometheus.CounterVec
}

// New registers all collectors, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_attempts_total",
				Help: "Login and registration attempts by outcome",
			},
			[]string{"action", "outcome"},
		),
		AppointmentEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "appointment_events_total",
				Help: "Appointment lifecycle events",
			},
			[]string{"event", "status"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.AuthAttempts,
		m.AppointmentEvents,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Auth records a login or registration outcome. Safe on a nil receiver.
func (m *Metrics) Auth(action, outcome string) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(action, outcome).Inc()
}

// Appointment records a lifecycle event. Safe on a nil receiver.
func (m *Metrics) Appointment(event, status string) {
	if m == nil {
		return
	}
	m.AppointmentEvents.WithLabelValues(event, status).Inc()
}
