package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "claimflow:lock:"

// releaseScript shortens the key's expiry to the remaining at-least-for hold,
// or deletes it, but only while the caller's token still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	local keep = tonumber(ARGV[2])
	if keep > 0 then
		return redis.call("PEXPIRE", KEYS[1], keep)
	end
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisProvider stores each lock as a key whose value is the owner's token
// and whose expiry is the at-most-for bound.
type RedisProvider struct {
	client redis.UniversalClient
	owner  string
	now    func() time.Time
}

func NewRedis(client redis.UniversalClient, owner string) *RedisProvider {
	return &RedisProvider{client: client, owner: owner, now: time.Now}
}

func (p *RedisProvider) TryLock(ctx context.Context, cfg Config) (*Lock, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	now := p.now()
	// Each acquisition gets its own token so a node never releases a lock
	// it took over from an earlier run of itself.
	token := p.owner + ":" + uuid.NewString()
	ok, err := p.client.SetNX(ctx, redisKeyPrefix+cfg.Name, token, cfg.LockAtMostFor).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", cfg.Name, err)
	}
	if !ok {
		return nil, nil
	}
	return &Lock{Config: cfg, Owner: token, LockedAt: now}, nil
}

func (p *RedisProvider) Unlock(ctx context.Context, lock *Lock) error {
	now := p.now()
	keep := lock.releaseUntil(now).Sub(now)
	err := releaseScript.Run(ctx, p.client, []string{redisKeyPrefix + lock.Name}, lock.Owner, keep.Milliseconds()).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", lock.Name, err)
	}
	return nil
}
