package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks reconciliation decisions, reservations, authorization
// denials and HTTP latency. A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	Reconciled      *prometheus.CounterVec
	Reservations    *prometheus.CounterVec
	Denials         *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New registers all metrics with reg. Tests pass a fresh
// prometheus.NewRegistry() each.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		Reconciled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pantrypal_reconciled_lines_total",
			Help: "Incoming product lines by reconciliation outcome",
		}, []string{"target", "action"}),
		Reservations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pantrypal_reservations_total",
			Help: "Pantry reservation attempts by outcome",
		}, []string{"outcome"}),
		Denials: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pantrypal_authorization_denials_total",
			Help: "Denied resource accesses by reason",
		}, []string{"resource", "reason"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pantrypal_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "status"}),
	}
}

// IncReconciled records one reconciliation decision for target ("pantry" or
// "shopping_list").
func (m *Metrics) IncReconciled(target, action string) {
	if m == nil {
		return
	}
	m.Reconciled.WithLabelValues(target, action).Inc()
}

func (m *Metrics) IncReservation(applied bool) {
	if m == nil {
		return
	}
	outcome := "rejected"
	if applied {
		outcome = "applied"
	}
	m.Reservations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncDenial(resource, reason string) {
	if m == nil {
		return
	}
	m.Denials.WithLabelValues(resource, reason).Inc()
}

// ObserveRequest records the duration of one HTTP request.
// Call with time.Now() at the start of the request.
func (m *Metrics) ObserveRequest(method, status string, start time.Time) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, status).Observe(time.Since(start).Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
