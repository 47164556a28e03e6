package ops

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for best-effort audit publishing.
type Metrics struct {
	Published           prometheus.Counter
	Dropped             prometheus.Counter
	PublishFailures     prometheus.Counter
	CircuitBreakerState prometheus.Gauge
}

// NewMetrics registers the audit publisher metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Published: factory.NewCounter(prometheus.CounterOpts{
			Name: "reviewprivacy_audit_published_total",
			Help: "Total number of audit events delivered to the sink",
		}),
		Dropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "reviewprivacy_audit_circuit_breaker_dropped_total",
			Help: "Total number of audit events dropped while the circuit breaker was open",
		}),
		PublishFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "reviewprivacy_audit_sink_failures_total",
			Help: "Total number of audit events the sink rejected",
		}),
		CircuitBreakerState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "reviewprivacy_audit_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=open)",
		}),
	}
}

func (m *Metrics) IncPublished() {
	m.Published.Inc()
}

func (m *Metrics) IncDropped() {
	m.Dropped.Inc()
}

func (m *Metrics) IncPublishFailures() {
	m.PublishFailures.Inc()
}

func (m *Metrics) SetCircuitOpen(open bool) {
	if open {
		m.CircuitBreakerState.Set(1)
		return
	}
	m.CircuitBreakerState.Set(0)
}
