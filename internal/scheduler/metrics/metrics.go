package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lock acquisition results.
const (
	LockAcquired = "acquired"
	LockBusy     = "busy"
	LockError    = "error"
)

// Metrics tracks scheduled job runs and the locks guarding them.
type Metrics struct {
	LockAcquisitions *prometheus.CounterVec
	JobRuns          *prometheus.CounterVec
	JobDuration      *prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		LockAcquisitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "claimflow_scheduler_lock_acquisitions_total",
			Help: "Scheduler lock attempts by job and result",
		}, []string{"job", "result"}),
		JobRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "claimflow_scheduler_job_runs_total",
			Help: "Scheduled job runs by job and outcome",
		}, []string{"job", "outcome"}),
		JobDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "claimflow_scheduler_job_duration_seconds",
			Help:    "Duration of scheduled job runs while holding the lock",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 14),
		}, []string{"job"}),
	}
}

func (m *Metrics) IncrementLockAcquisition(job, result string) {
	if m == nil {
		return
	}
	m.LockAcquisitions.WithLabelValues(job, result).Inc()
}

func (m *Metrics) ObserveJobRun(job string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.JobRuns.WithLabelValues(job, outcome).Inc()
	m.JobDuration.WithLabelValues(job).Observe(d.Seconds())
}
