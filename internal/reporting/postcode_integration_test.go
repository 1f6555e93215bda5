//go:build integration

package reporting_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"claimflow/internal/reporting"
	"claimflow/pkg/testutil/containers"
)

type countingLookup struct {
	calls int
}

func (c *countingLookup) Lookup(_ context.Context, postcode string) (reporting.PostcodeData, error) {
	c.calls++
	if postcode == "ZZ9 9ZZ" {
		return reporting.PostcodeDataNotFound, nil
	}
	return reporting.PostcodeData{Postcode: postcode, Region: "North West"}, nil
}

type CachedPostcodeSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestCachedPostcodeSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CachedPostcodeSuite))
}

func (s *CachedPostcodeSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *CachedPostcodeSuite) SetupTest() {
	s.Require().NoError(s.redis.DeleteKeys(context.Background(), "claimflow:postcode:*"))
}

func (s *CachedPostcodeSuite) TestSecondLookupIsServedFromCache() {
	ctx := context.Background()
	inner := &countingLookup{}
	lookup := reporting.NewCachedPostcodeLookup(inner, s.redis.Client, time.Minute)

	first, err := lookup.Lookup(ctx, "M1 1AE")
	s.Require().NoError(err)
	second, err := lookup.Lookup(ctx, "m11ae")
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Equal(1, inner.calls)

	ttl, err := s.redis.Client.TTL(ctx, "claimflow:postcode:M11AE").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
}

func (s *CachedPostcodeSuite) TestNotFoundIsCachedToo() {
	ctx := context.Background()
	inner := &countingLookup{}
	lookup := reporting.NewCachedPostcodeLookup(inner, s.redis.Client, time.Minute)

	for i := 0; i < 3; i++ {
		data, err := lookup.Lookup(ctx, "ZZ9 9ZZ")
		s.Require().NoError(err)
		s.Equal(reporting.PostcodeDataNotFound, data)
	}
	s.Equal(1, inner.calls)
}
