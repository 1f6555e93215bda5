package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProvider keeps one row per lock name in scheduler_locks. A row
// whose lock_until has passed can be taken over by any node.
type PostgresProvider struct {
	pool  *pgxpool.Pool
	owner string
	now   func() time.Time
}

func NewPostgres(pool *pgxpool.Pool, owner string) *PostgresProvider {
	return &PostgresProvider{pool: pool, owner: owner, now: time.Now}
}

func (p *PostgresProvider) TryLock(ctx context.Context, cfg Config) (*Lock, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// Postgres keeps microseconds; truncating lets Unlock match locked_at.
	now := p.now().UTC().Truncate(time.Microsecond)
	tag, err := p.pool.Exec(ctx, `
		INSERT INTO scheduler_locks (name, locked_by, locked_at, lock_until)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE
		SET locked_by = EXCLUDED.locked_by,
			locked_at = EXCLUDED.locked_at,
			lock_until = EXCLUDED.lock_until
		WHERE scheduler_locks.lock_until <= EXCLUDED.locked_at`,
		cfg.Name, p.owner, now, now.Add(cfg.LockAtMostFor),
	)
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", cfg.Name, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return &Lock{Config: cfg, Owner: p.owner, LockedAt: now}, nil
}

func (p *PostgresProvider) Unlock(ctx context.Context, lock *Lock) error {
	until := lock.releaseUntil(p.now().UTC())
	_, err := p.pool.Exec(ctx, `
		UPDATE scheduler_locks
		SET lock_until = $4
		WHERE name = $1 AND locked_by = $2 AND locked_at = $3`,
		lock.Name, lock.Owner, lock.LockedAt, until,
	)
	if err != nil {
		return fmt.Errorf("release lock %s: %w", lock.Name, err)
	}
	return nil
}
