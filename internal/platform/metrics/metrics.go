package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the claim lifecycle metrics shared across services.
type Metrics struct {
	ClaimsCreated     *prometheus.CounterVec
	CardStatusChanges *prometheus.CounterVec
}

// New creates and registers the claim lifecycle metrics
func New() *Metrics {
	return &Metrics{
		ClaimsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "claimflow_claims_created_total",
			Help: "Total number of claims created, by initial claim status",
		}, []string{"claim_status"}),
		CardStatusChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "claimflow_card_status_changes_total",
			Help: "Card status changes made by the cancellation sweeps",
		}, []string{"card_status"}),
	}
}

// IncrementClaimsCreated increments the claims created counter by 1
func (m *Metrics) IncrementClaimsCreated(status string) {
	if m == nil {
		return
	}
	m.ClaimsCreated.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementCardStatusChange(status string) {
	if m == nil {
		return
	}
	m.CardStatusChanges.WithLabelValues(status).Inc()
}
