package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for eligibility decisions.
type Metrics struct {
	Decisions      *prometheus.CounterVec
	ClientLatency  prometheus.Histogram
	ClientFailures prometheus.Counter
}

// New creates a new Metrics instance with all eligibility metrics registered.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "claimflow_eligibility_decisions_total",
			Help: "Eligibility decisions by kind and resulting status",
		}, []string{"kind", "status"}), // kind: "new_claim", "payment_cycle"

		ClientLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "claimflow_eligibility_client_duration_seconds",
			Help:    "Duration of calls to the eligibility service",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		ClientFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "claimflow_eligibility_client_failures_total",
			Help: "Failed calls to the eligibility service",
		}),
	}
}

func (m *Metrics) IncrementDecision(kind, status string) {
	if m != nil {
		m.Decisions.WithLabelValues(kind, status).Inc()
	}
}

func (m *Metrics) ObserveClientLatency(d time.Duration) {
	if m != nil {
		m.ClientLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementClientFailure() {
	if m != nil {
		m.ClientFailures.Inc()
	}
}
