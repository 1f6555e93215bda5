package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks payments and payment cycles.
type Metrics struct {
	Payments        *prometheus.CounterVec
	AmountPaid      prometheus.Counter
	CyclesCreated   prometheus.Counter
	RolloverFailure prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Payments: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "claimflow_payments_total",
			Help: "Payment attempts by resulting payment cycle status",
		}, []string{"status"}),

		AmountPaid: promauto.NewCounter(prometheus.CounterOpts{
			Name: "claimflow_payments_amount_pence_total",
			Help: "Total amount deposited onto cards in pence",
		}),

		CyclesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "claimflow_payment_cycles_created_total",
			Help: "Payment cycles created, first cycles and rollovers",
		}),

		RolloverFailure: promauto.NewCounter(prometheus.CounterOpts{
			Name: "claimflow_payment_cycle_rollover_failures_total",
			Help: "Claims whose next payment cycle could not be created",
		}),
	}
}

func (m *Metrics) IncrementPayment(status string, amountInPence int) {
	if m == nil {
		return
	}
	m.Payments.WithLabelValues(status).Inc()
	m.AmountPaid.Add(float64(amountInPence))
}

func (m *Metrics) IncrementCyclesCreated() {
	if m != nil {
		m.CyclesCreated.Inc()
	}
}

func (m *Metrics) IncrementRolloverFailure() {
	if m != nil {
		m.RolloverFailure.Inc()
	}
}
