// Package lock provides cluster-wide job locks. A lock is held for at most
// LockAtMostFor in case its holder dies, and at least LockAtLeastFor so that
// nodes with skewed clocks do not run the same tick twice.
package lock

import (
	"context"
	"errors"
	"time"
)

// Config describes the lock a job run needs.
type Config struct {
	Name           string
	LockAtMostFor  time.Duration
	LockAtLeastFor time.Duration
}

func (c Config) Validate() error {
	if c.Name == "" {
		return errors.New("lock name is required")
	}
	if c.LockAtMostFor <= 0 {
		return errors.New("lock at-most-for must be positive")
	}
	if c.LockAtLeastFor < 0 || c.LockAtLeastFor > c.LockAtMostFor {
		return errors.New("lock at-least-for must be between zero and at-most-for")
	}
	return nil
}

// Lock is a lock this node holds.
type Lock struct {
	Config
	Owner    string
	LockedAt time.Time
}

// releaseUntil is when the lock becomes free once its holder unlocks it.
func (l *Lock) releaseUntil(now time.Time) time.Time {
	minimum := l.LockedAt.Add(l.LockAtLeastFor)
	if minimum.After(now) {
		return minimum
	}
	return now
}

// Provider acquires and releases named locks. TryLock returns a nil Lock
// and no error when another owner holds the lock.
type Provider interface {
	TryLock(ctx context.Context, cfg Config) (*Lock, error)
	Unlock(ctx context.Context, lock *Lock) error
}
