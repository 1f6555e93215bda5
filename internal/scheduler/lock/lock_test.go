package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// =============================================================================
// In-Memory Lock Test Suite
// =============================================================================
// Justification for unit tests: the at-least-for and at-most-for bounds are
// time arithmetic that the integration tests can only sample with real
// sleeps.

type InMemoryLockSuite struct {
	suite.Suite
	provider *InMemoryProvider
	clock    time.Time
	cfg      Config
	ctx      context.Context
}

func TestInMemoryLockSuite(t *testing.T) {
	suite.Run(t, new(InMemoryLockSuite))
}

func (s *InMemoryLockSuite) SetupTest() {
	s.clock = time.Date(2026, 3, 2, 2, 0, 0, 0, time.UTC)
	s.provider = NewInMemory("node-a")
	s.provider.now = func() time.Time { return s.clock }
	s.cfg = Config{Name: "process-messages", LockAtMostFor: 10 * time.Minute, LockAtLeastFor: 30 * time.Second}
	s.ctx = context.Background()
}

func (s *InMemoryLockSuite) advance(d time.Duration) {
	s.clock = s.clock.Add(d)
}

func (s *InMemoryLockSuite) TestSecondAcquireFailsWhileHeld() {
	held, err := s.provider.TryLock(s.ctx, s.cfg)
	s.Require().NoError(err)
	s.Require().NotNil(held)
	s.Equal("node-a", held.Owner)
	s.Equal(s.clock, held.LockedAt)

	again, err := s.provider.TryLock(s.ctx, s.cfg)
	s.Require().NoError(err)
	s.Nil(again)

	other, err := s.provider.TryLock(s.ctx, Config{Name: "card-cancellation", LockAtMostFor: time.Minute})
	s.Require().NoError(err)
	s.NotNil(other, "locks are independent per name")
}

func (s *InMemoryLockSuite) TestUnlockKeepsLockForAtLeastFor() {
	held, err := s.provider.TryLock(s.ctx, s.cfg)
	s.Require().NoError(err)

	s.advance(10 * time.Second)
	s.Require().NoError(s.provider.Unlock(s.ctx, held))

	again, err := s.provider.TryLock(s.ctx, s.cfg)
	s.Require().NoError(err)
	s.Nil(again, "released before at-least-for elapsed")

	s.advance(20 * time.Second)
	again, err = s.provider.TryLock(s.ctx, s.cfg)
	s.Require().NoError(err)
	s.NotNil(again)
}

func (s *InMemoryLockSuite) TestUnlockAfterAtLeastForFreesImmediately() {
	held, err := s.provider.TryLock(s.ctx, s.cfg)
	s.Require().NoError(err)

	s.advance(time.Minute)
	s.Require().NoError(s.provider.Unlock(s.ctx, held))

	again, err := s.provider.TryLock(s.ctx, s.cfg)
	s.Require().NoError(err)
	s.NotNil(again)
}

func (s *InMemoryLockSuite) TestLockExpiresAfterAtMostFor() {
	_, err := s.provider.TryLock(s.ctx, s.cfg)
	s.Require().NoError(err)

	s.advance(9 * time.Minute)
	again, err := s.provider.TryLock(s.ctx, s.cfg)
	s.Require().NoError(err)
	s.Nil(again)

	s.advance(time.Minute)
	again, err = s.provider.TryLock(s.ctx, s.cfg)
	s.Require().NoError(err)
	s.NotNil(again, "holder that never unlocks loses the lock after at-most-for")
}

func (s *InMemoryLockSuite) TestStaleUnlockDoesNotReleaseNewHolder() {
	stale, err := s.provider.TryLock(s.ctx, s.cfg)
	s.Require().NoError(err)

	s.advance(11 * time.Minute)
	current, err := s.provider.TryLock(s.ctx, s.cfg)
	s.Require().NoError(err)
	s.Require().NotNil(current)

	s.advance(time.Minute)
	s.Require().NoError(s.provider.Unlock(s.ctx, stale))

	again, err := s.provider.TryLock(s.ctx, s.cfg)
	s.Require().NoError(err)
	s.Nil(again)
}

// =============================================================================
// Config
// =============================================================================

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Name: "job", LockAtMostFor: time.Minute, LockAtLeastFor: time.Second}, false},
		{"zero at least", Config{Name: "job", LockAtMostFor: time.Minute}, false},
		{"missing name", Config{LockAtMostFor: time.Minute}, true},
		{"missing at most", Config{Name: "job"}, true},
		{"at least exceeds at most", Config{Name: "job", LockAtMostFor: time.Second, LockAtLeastFor: time.Minute}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestInvalidConfigIsRejectedByProviders(t *testing.T) {
	_, err := NewInMemory("node").TryLock(context.Background(), Config{Name: "job"})
	require.Error(t, err)
}
