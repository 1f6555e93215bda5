//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"claimflow/internal/claim/models"
	"claimflow/internal/claim/store"
	"claimflow/pkg/platform/sentinel"
	"claimflow/pkg/platform/tx"
	"claimflow/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "payments", "payment_cycles", "messages", "claims")
	s.Require().NoError(err)
}

func newClaim(nino string, status models.ClaimStatus) *models.Claim {
	dueDate := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	claimant := models.Claimant{
		FirstName:            "Marge",
		LastName:             "Simpson",
		Nino:                 nino,
		DateOfBirth:          time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		ExpectedDeliveryDate: &dueDate,
		EmailAddress:         "marge@example.com",
		Address:              models.Address{AddressLine1: "742 Evergreen Terrace", TownOrCity: "Springfield", Postcode: "AA1 1AA"},
	}
	return models.NewClaim(claimant, status, models.EligibilityStatusEligible, "dwp-"+nino, "hmrc-"+nino, time.Now().UTC().Truncate(time.Microsecond))
}

// =============================================================================
// Create / Find
// =============================================================================

func (s *PostgresStoreSuite) TestCreateAndFindRoundTripsClaimant() {
	ctx := context.Background()
	claim := newClaim("QQ123456C", models.ClaimStatusNew)
	s.Require().NoError(s.store.Create(ctx, claim))

	found, err := s.store.FindByID(ctx, claim.ID)
	s.Require().NoError(err)
	s.Equal(claim.Nino, found.Nino)
	s.Equal(models.ClaimStatusNew, found.ClaimStatus)
	s.Require().NotNil(found.Claimant.ExpectedDeliveryDate)
	s.True(claim.Claimant.ExpectedDeliveryDate.Equal(*found.Claimant.ExpectedDeliveryDate))
	s.Equal("AA1 1AA", found.Claimant.Address.Postcode)
	s.Nil(found.CardStatusTimestamp)
	s.Equal(1, found.Version)
}

func (s *PostgresStoreSuite) TestFindByIDMissingReturnsNotFound() {
	_, err := s.store.FindByID(context.Background(), newClaim("QQ000000C", models.ClaimStatusNew).ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentLiveClaimsForNino verifies the partial unique index lets only
// one live claim per NINO through.
func (s *PostgresStoreSuite) TestConcurrentLiveClaimsForNino() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Create(ctx, newClaim("QQ999999C", models.ClaimStatusNew))
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
	s.Equal(int32(goroutines-1), conflictCount.Load())
}

// =============================================================================
// Update
// =============================================================================

func (s *PostgresStoreSuite) TestUpdateDetectsStaleVersion() {
	ctx := context.Background()
	claim := newClaim("QQ123456C", models.ClaimStatusNew)
	s.Require().NoError(s.store.Create(ctx, claim))

	stale, err := s.store.FindByID(ctx, claim.ID)
	s.Require().NoError(err)

	now := time.Now().UTC()
	s.Require().NoError(claim.AssignCard("card-1", now))
	s.Require().NoError(claim.UpdateClaimStatus(models.ClaimStatusActive, now))
	s.Require().NoError(claim.UpdateCardStatus(models.CardStatusActive, now))
	s.Require().NoError(s.store.Update(ctx, claim))
	s.Equal(2, claim.Version)

	found, err := s.store.FindByID(ctx, claim.ID)
	s.Require().NoError(err)
	s.Equal("card-1", found.CardAccountID)
	s.Equal(models.CardStatusActive, found.CardStatus)
	s.NotNil(found.CardStatusTimestamp)

	err = s.store.Update(ctx, stale)
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestUpdateInsideRolledBackTransactionIsDiscarded() {
	ctx := context.Background()
	claim := newClaim("QQ123456C", models.ClaimStatusNew)
	s.Require().NoError(s.store.Create(ctx, claim))

	runner := tx.NewPostgresRunner(s.postgres.DB, 5*time.Second)
	err := runner.RunInTx(ctx, func(ctx context.Context) error {
		s.Require().NoError(claim.UpdateClaimStatus(models.ClaimStatusActive, time.Now()))
		s.Require().NoError(s.store.Update(ctx, claim))
		return sentinel.ErrUnavailable
	})
	s.ErrorIs(err, sentinel.ErrUnavailable)

	found, err := s.store.FindByID(ctx, claim.ID)
	s.Require().NoError(err)
	s.Equal(models.ClaimStatusNew, found.ClaimStatus)
	s.Equal(1, found.Version)
}

// =============================================================================
// Queries
// =============================================================================

func (s *PostgresStoreSuite) TestLiveClaimQueries() {
	ctx := context.Background()
	live := newClaim("QQ123456C", models.ClaimStatusActive)
	expired := newClaim("QQ654321C", models.ClaimStatusExpired)
	s.Require().NoError(s.store.Create(ctx, live))
	s.Require().NoError(s.store.Create(ctx, expired))

	claims, err := s.store.FindLiveClaimsWithNino(ctx, "QQ123456C")
	s.Require().NoError(err)
	s.Require().Len(claims, 1)
	s.Equal(live.ID, claims[0].ID)

	claims, err = s.store.FindLiveClaimsWithNino(ctx, "QQ654321C")
	s.Require().NoError(err)
	s.Empty(claims)

	exists, err := s.store.LiveClaimExistsForHousehold(ctx, "dwp-QQ123456C", "")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.store.LiveClaimExistsForHousehold(ctx, "", "hmrc-QQ654321C")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *PostgresStoreSuite) TestFindByCardStatusChangedBefore() {
	ctx := context.Background()
	now := time.Now().UTC()
	old := newClaim("QQ111111C", models.ClaimStatusActive)
	s.Require().NoError(old.UpdateCardStatus(models.CardStatusActive, now.AddDate(0, -6, 0)))
	s.Require().NoError(old.UpdateCardStatus(models.CardStatusPendingCancellation, now.AddDate(0, -5, 0)))
	recent := newClaim("QQ222222C", models.ClaimStatusActive)
	s.Require().NoError(recent.UpdateCardStatus(models.CardStatusActive, now.AddDate(0, -6, 0)))
	s.Require().NoError(recent.UpdateCardStatus(models.CardStatusPendingCancellation, now.AddDate(0, 0, -1)))
	s.Require().NoError(s.store.Create(ctx, old))
	s.Require().NoError(s.store.Create(ctx, recent))

	claims, err := s.store.FindByCardStatusChangedBefore(ctx, models.CardStatusPendingCancellation, now.AddDate(0, -1, 0))
	s.Require().NoError(err)
	s.Require().Len(claims, 1)
	s.Equal(old.ID, claims[0].ID)

	claims, err = s.store.FindByCardStatus(ctx, models.CardStatusPendingCancellation)
	s.Require().NoError(err)
	s.Len(claims, 2)
}
