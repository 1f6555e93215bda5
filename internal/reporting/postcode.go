package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"claimflow/pkg/platform/circuit"
	"claimflow/pkg/platform/sentinel"
)

// PostcodeLookup resolves a postcode. Unknown postcodes return
// PostcodeDataNotFound, not an error.
type PostcodeLookup interface {
	Lookup(ctx context.Context, postcode string) (PostcodeData, error)
}

const postcodeKeyPrefix = "claimflow:postcode:"

// CachedPostcodeLookup fronts a lookup with a Redis cache and a circuit
// breaker. A nil Redis client disables caching.
type CachedPostcodeLookup struct {
	inner   PostcodeLookup
	redis   *redis.Client
	ttl     time.Duration
	breaker *circuit.Breaker
	logger  *slog.Logger
}

type PostcodeOption func(*CachedPostcodeLookup)

func WithPostcodeLogger(logger *slog.Logger) PostcodeOption {
	return func(c *CachedPostcodeLookup) {
		c.logger = logger
	}
}

func WithBreaker(b *circuit.Breaker) PostcodeOption {
	return func(c *CachedPostcodeLookup) {
		c.breaker = b
	}
}

func NewCachedPostcodeLookup(inner PostcodeLookup, client *redis.Client, ttl time.Duration, opts ...PostcodeOption) *CachedPostcodeLookup {
	c := &CachedPostcodeLookup{
		inner:   inner,
		redis:   client,
		ttl:     ttl,
		breaker: circuit.New("postcode-lookup"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalisePostcode upper-cases a postcode and strips its spaces.
func NormalisePostcode(postcode string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(postcode), " ", ""))
}

func (c *CachedPostcodeLookup) Lookup(ctx context.Context, postcode string) (PostcodeData, error) {
	key := postcodeKeyPrefix + NormalisePostcode(postcode)

	if data, ok := c.cached(ctx, key); ok {
		return data, nil
	}

	if !c.breaker.Allow() {
		return PostcodeData{}, fmt.Errorf("postcode lookup circuit %s open: %w", c.breaker.Name(), sentinel.ErrUnavailable)
	}

	data, err := c.inner.Lookup(ctx, postcode)
	if err != nil {
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.WarnContext(ctx, "postcode lookup circuit opened", slog.String("error", err.Error()))
		}
		return PostcodeData{}, err
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "postcode lookup circuit closed")
	}

	c.store(ctx, key, data)
	return data, nil
}

func (c *CachedPostcodeLookup) cached(ctx context.Context, key string) (PostcodeData, bool) {
	if c.redis == nil {
		return PostcodeData{}, false
	}
	raw, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "postcode cache read failed", slog.String("error", err.Error()))
		}
		return PostcodeData{}, false
	}
	var data PostcodeData
	if err := json.Unmarshal(raw, &data); err != nil {
		c.logger.WarnContext(ctx, "postcode cache entry unreadable", slog.String("key", key))
		return PostcodeData{}, false
	}
	return data, true
}

func (c *CachedPostcodeLookup) store(ctx context.Context, key string, data PostcodeData) {
	if c.redis == nil {
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "postcode cache write failed", slog.String("error", err.Error()))
	}
}
