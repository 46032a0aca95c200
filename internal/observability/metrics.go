package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for the service.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorTotal      *prometheus.CounterVec
	decisionTotal   *prometheus.CounterVec
	escalationTotal prometheus.Counter
}

// NewMetrics builds and registers the collectors on a private registry.
func NewMetrics(serviceName string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard",
			Name:      "http_requests_total",
			Help:      "HTTP requests by path, method and status.",
			ConstLabels: prometheus.Labels{
				"service": serviceName,
			},
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hazard",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard",
			Name:      "domain_errors_total",
			Help:      "Domain errors by code.",
		}, []string{"code"}),
		decisionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard",
			Name:      "verification_decisions_total",
			Help:      "Verification decisions by outcome.",
		}, []string{"decision"}),
		escalationTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard",
			Name:      "ticket_escalations_total",
			Help:      "Ticket escalations performed.",
		}),
	}

	registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.errorTotal,
		m.decisionTotal,
		m.escalationTotal,
	)
	return m
}

// Registry returns the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// RecordRequest counts a finished request.
func (m *Metrics) RecordRequest(path, method, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.WithLabelValues(path, method, status).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError counts a domain error by stable code.
func (m *Metrics) RecordError(code string) {
	if m == nil {
		return
	}
	m.errorTotal.WithLabelValues(code).Inc()
}

// RecordDecision counts a verification decision.
func (m *Metrics) RecordDecision(decision string) {
	if m == nil {
		return
	}
	m.decisionTotal.WithLabelValues(decision).Inc()
}

// RecordEscalation counts a completed escalation.
func (m *Metrics) RecordEscalation() {
	if m == nil {
		return
	}
	m.escalationTotal.Inc()
}
