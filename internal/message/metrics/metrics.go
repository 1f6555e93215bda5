package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks message sweeps.
type Metrics struct {
	Processed     *prometheus.CounterVec
	SweepDuration prometheus.Histogram
	Pending       *prometheus.GaugeVec
}

func New() *Metrics {
	return &Metrics{
		Processed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "claimflow_messages_processed_total",
			Help: "Messages processed by type and resulting status",
		}, []string{"message_type", "status"}),

		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "claimflow_message_sweep_duration_seconds",
			Help:    "Duration of a full message sweep",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),

		Pending: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "claimflow_messages_pending",
			Help: "Messages waiting in the queue by type",
		}, []string{"message_type"}),
	}
}

func (m *Metrics) IncrementProcessed(messageType, status string) {
	if m != nil {
		m.Processed.WithLabelValues(messageType, status).Inc()
	}
}

func (m *Metrics) ObserveSweep(d time.Duration) {
	if m != nil {
		m.SweepDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) SetPending(messageType string, n int) {
	if m != nil {
		m.Pending.WithLabelValues(messageType).Set(float64(n))
	}
}
