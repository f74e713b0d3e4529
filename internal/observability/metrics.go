package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the gateway.
type Metrics struct {
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	GuardDecisions   *prometheus.CounterVec
	UpstreamRequests *prometheus.CounterVec
	ProviderCalls    *prometheus.CounterVec
	Errors           *prometheus.CounterVec
}

// NewMetrics initializes and registers the gateway metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coop_gateway",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of handled HTTP requests by path, method and status.",
		}, []string{"path", "method", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "coop_gateway",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
		GuardDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coop_gateway",
			Subsystem: "guard",
			Name:      "decisions_total",
			Help:      "Route and subscription guard outcomes.",
		}, []string{"guard", "outcome"}),
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coop_gateway",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Outbound calls to the upstream backend by path and status.",
		}, []string{"path", "status"}),
		ProviderCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coop_gateway",
			Subsystem: "payments",
			Name:      "provider_calls_total",
			Help:      "Payment provider API calls by provider, operation and outcome.",
		}, []string{"provider", "operation", "outcome"}),
		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coop_gateway",
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Request errors by path, method and error code.",
		}, []string{"path", "method", "code"}),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(path, method, code).Inc()
}

// RecordGuard records a guard decision.
func (m *Metrics) RecordGuard(guard, outcome string) {
	if m == nil {
		return
	}
	m.GuardDecisions.WithLabelValues(guard, outcome).Inc()
}

// RecordUpstream records an outbound backend call.
func (m *Metrics) RecordUpstream(path string, status int) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(path, strconv.Itoa(status)).Inc()
}

// RecordProviderCall records a payment provider API call.
func (m *Metrics) RecordProviderCall(provider, operation, outcome string) {
	if m == nil {
		return
	}
	m.ProviderCalls.WithLabelValues(provider, operation, outcome).Inc()
}
