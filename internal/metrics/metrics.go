// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	Requests     *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
	Transactions *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "afterschool",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "afterschool",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Transactions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "afterschool",
			Name:      "transactions_total",
			Help:      "Database transactions by operation and outcome.",
		}, []string{"op", "outcome"}),
	}
}

// ObserveTx counts one transaction outcome.
func (m *Metrics) ObserveTx(op, outcome string) {
	if m == nil {
		return
	}
	m.Transactions.WithLabelValues(op, outcome).Inc()
}

// ObserveRequest records a served request.
func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, route, status).Inc()
	m.Duration.WithLabelValues(method, route).Observe(seconds)
}
