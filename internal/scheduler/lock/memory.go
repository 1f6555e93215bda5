package lock

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	owner    string
	lockedAt time.Time
	until    time.Time
}

// InMemoryProvider locks within a single process. It serves single node
// deployments and tests.
type InMemoryProvider struct {
	mu    sync.Mutex
	owner string
	locks map[string]memoryEntry
	now   func() time.Time
}

func NewInMemory(owner string) *InMemoryProvider {
	return &InMemoryProvider{owner: owner, locks: make(map[string]memoryEntry), now: time.Now}
}

func (p *InMemoryProvider) TryLock(_ context.Context, cfg Config) (*Lock, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if held, ok := p.locks[cfg.Name]; ok && held.until.After(now) {
		return nil, nil
	}
	p.locks[cfg.Name] = memoryEntry{owner: p.owner, lockedAt: now, until: now.Add(cfg.LockAtMostFor)}
	return &Lock{Config: cfg, Owner: p.owner, LockedAt: now}, nil
}

func (p *InMemoryProvider) Unlock(_ context.Context, lock *Lock) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	held, ok := p.locks[lock.Name]
	if !ok || held.owner != lock.Owner || !held.lockedAt.Equal(lock.LockedAt) {
		return nil
	}
	held.until = lock.releaseUntil(p.now())
	p.locks[lock.Name] = held
	return nil
}
