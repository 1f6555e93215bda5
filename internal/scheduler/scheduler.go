// Package scheduler runs the service's periodic jobs on cron schedules. Every
// run takes a cluster lock named after its job so that only one node runs a
// given tick.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"claimflow/internal/scheduler/lock"
	"claimflow/internal/scheduler/metrics"
	"claimflow/pkg/requestcontext"
)

// Job is a named unit of periodic work.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

// parser accepts standard five field expressions and descriptors such as
// "@every 30s".
var parser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type Scheduler struct {
	cron           *cron.Cron
	locks          lock.Provider
	lockAtLeastFor time.Duration
	lockAtMostFor  time.Duration
	logger         *slog.Logger
	metrics        *metrics.Metrics

	mu    sync.Mutex
	names map[string]struct{}
	base  context.Context
}

type Option func(*Scheduler)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// WithLockBounds sets how long each run holds its lock: at least atLeastFor
// after it started and at most atMostFor. atMostFor also bounds the run.
func WithLockBounds(atLeastFor, atMostFor time.Duration) Option {
	return func(s *Scheduler) {
		s.lockAtLeastFor = atLeastFor
		s.lockAtMostFor = atMostFor
	}
}

func New(locks lock.Provider, opts ...Option) (*Scheduler, error) {
	if locks == nil {
		return nil, errors.New("lock provider is required")
	}
	s := &Scheduler{
		locks:          locks,
		lockAtLeastFor: 10 * time.Second,
		lockAtMostFor:  10 * time.Minute,
		logger:         slog.Default(),
		names:          make(map[string]struct{}),
		base:           context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.lockAtMostFor <= 0 || s.lockAtLeastFor < 0 || s.lockAtLeastFor > s.lockAtMostFor {
		return nil, fmt.Errorf("invalid lock bounds: at least %s, at most %s", s.lockAtLeastFor, s.lockAtMostFor)
	}

	logger := cronLogger{s.logger}
	s.cron = cron.New(
		cron.WithParser(parser),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	return s, nil
}

// Register adds a job. Runs of the same job on this node never overlap; a
// tick that arrives while the previous run is still going is skipped.
func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Run == nil {
		return errors.New("job name and run function are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.names[job.Name]; ok {
		return fmt.Errorf("job %s is already registered", job.Name)
	}
	_, err := s.cron.AddFunc(job.Schedule, func() {
		_, _ = s.RunOnce(s.context(), job)
	})
	if err != nil {
		return fmt.Errorf("schedule job %s %q: %w", job.Name, job.Schedule, err)
	}
	s.names[job.Name] = struct{}{}
	s.logger.Info("scheduled job registered",
		slog.String("job", job.Name),
		slog.String("schedule", job.Schedule),
	)
	return nil
}

// Start runs the registered jobs until ctx is cancelled, then waits for
// in-flight runs to return.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.base = ctx
	s.mu.Unlock()

	s.cron.Start()
	s.logger.InfoContext(ctx, "scheduler started", slog.Int("jobs", len(s.cron.Entries())))
	<-ctx.Done()

	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.base
}

// RunOnce runs job now if its cluster lock is free. It reports whether the
// job ran.
func (s *Scheduler) RunOnce(ctx context.Context, job Job) (bool, error) {
	held, err := s.locks.TryLock(ctx, lock.Config{
		Name:           job.Name,
		LockAtMostFor:  s.lockAtMostFor,
		LockAtLeastFor: s.lockAtLeastFor,
	})
	if err != nil {
		s.metrics.IncrementLockAcquisition(job.Name, metrics.LockError)
		s.logger.ErrorContext(ctx, "failed to acquire job lock",
			slog.String("job", job.Name),
			slog.Any("error", err),
		)
		return false, err
	}
	if held == nil {
		s.metrics.IncrementLockAcquisition(job.Name, metrics.LockBusy)
		s.logger.DebugContext(ctx, "job lock held elsewhere", slog.String("job", job.Name))
		return false, nil
	}
	s.metrics.IncrementLockAcquisition(job.Name, metrics.LockAcquired)

	runID := uuid.NewString()
	runCtx, cancel := context.WithTimeout(requestcontext.WithRunID(ctx, runID), s.lockAtMostFor)
	start := time.Now()
	err = job.Run(runCtx)
	cancel()
	s.metrics.ObserveJobRun(job.Name, err, time.Since(start))

	if unlockErr := s.locks.Unlock(context.WithoutCancel(ctx), held); unlockErr != nil {
		s.logger.WarnContext(ctx, "failed to release job lock",
			slog.String("job", job.Name),
			slog.Any("error", unlockErr),
		)
	}

	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled job failed",
			slog.String("job", job.Name),
			slog.String("run_id", runID),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)
		return true, err
	}
	s.logger.DebugContext(ctx, "scheduled job finished",
		slog.String("job", job.Name),
		slog.String("run_id", runID),
		slog.Duration("duration", time.Since(start)),
	)
	return true, nil
}

// cronLogger adapts slog to the cron library's logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
