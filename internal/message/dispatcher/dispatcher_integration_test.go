//go:build integration

package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	claimmodels "claimflow/internal/claim/models"
	claimstore "claimflow/internal/claim/store"
	"claimflow/internal/message/models"
	"claimflow/internal/message/store"
	"claimflow/pkg/platform/tx"
	"claimflow/pkg/requestcontext"
	"claimflow/pkg/testutil/containers"
)

// =============================================================================
// Dispatcher Transaction Test Suite
// =============================================================================
// Justification for integration tests: a processor's store writes and the
// follow-on messages it queues must commit or roll back together with the
// deletion of its message. Only a real Postgres transaction shows that.

type DispatcherPostgresSuite struct {
	suite.Suite
	postgres   *containers.PostgresContainer
	claims     *claimstore.PostgresStore
	messages   *store.PostgresStore
	processors map[models.MessageType]*stubProcessor
	dispatcher *Dispatcher
	ctx        context.Context
}

func TestDispatcherPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(DispatcherPostgresSuite))
}

func (s *DispatcherPostgresSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.claims = claimstore.NewPostgres(s.postgres.DB)
	s.messages = store.NewPostgres(s.postgres.DB)
}

func (s *DispatcherPostgresSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "payments", "payment_cycles", "messages", "claims")
	s.Require().NoError(err)

	s.processors = make(map[models.MessageType]*stubProcessor)
	var all []Processor
	for _, t := range models.MessageTypes {
		p := &stubProcessor{messageType: t}
		s.processors[t] = p
		all = append(all, p)
	}
	s.dispatcher, err = New(s.messages, tx.NewPostgresRunner(s.postgres.DB, 5*time.Second), all)
	s.Require().NoError(err)
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
}

func (s *DispatcherPostgresSuite) activeClaim() *claimmodels.Claim {
	claim := claimmodels.NewClaim(claimmodels.Claimant{
		FirstName:    "Marge",
		LastName:     "Simpson",
		Nino:         "QQ123456C",
		DateOfBirth:  time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		EmailAddress: "marge@example.com",
		Address:      claimmodels.Address{AddressLine1: "742 Evergreen Terrace", TownOrCity: "Springfield", Postcode: "AA1 1AA"},
	}, claimmodels.ClaimStatusActive, claimmodels.EligibilityStatusEligible, "dwp-1", "hmrc-1",
		time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC))
	claim.CardAccountID = "card-1"
	claim.CardStatus = claimmodels.CardStatusActive
	s.Require().NoError(s.claims.Create(context.Background(), claim))
	return claim
}

// lapseClaim makes the entitlement processor move the claim to PENDING_EXPIRY
// and queue a payment, then finish with the given outcome.
func (s *DispatcherPostgresSuite) lapseClaim(outcome func() (models.MessageStatus, error)) {
	s.processors[models.MessageTypeDetermineEntitlement].process = func(ctx context.Context, msg *models.Message) (models.MessageStatus, error) {
		payload, err := models.DecodePayload[models.DetermineEntitlementPayload](msg)
		if err != nil {
			return "", err
		}
		claim, err := s.claims.FindByID(ctx, payload.ClaimID)
		if err != nil {
			return "", err
		}
		if err := claim.UpdateClaimStatus(claimmodels.ClaimStatusPendingExpiry, requestcontext.Now(ctx)); err != nil {
			return "", err
		}
		if err := s.claims.Update(ctx, claim); err != nil {
			return "", err
		}
		if _, err := s.messages.Enqueue(ctx, models.MessageTypeSendEmail, models.SendEmailPayload{ClaimID: claim.ID}); err != nil {
			return "", err
		}
		return outcome()
	}
}

func (s *DispatcherPostgresSuite) enqueueEntitlementCheck(claim *claimmodels.Claim) {
	_, err := s.messages.Enqueue(s.ctx, models.MessageTypeDetermineEntitlement, models.DetermineEntitlementPayload{ClaimID: claim.ID})
	s.Require().NoError(err)
}

func (s *DispatcherPostgresSuite) pending(t models.MessageType) []*models.Message {
	msgs, err := s.messages.FindPending(context.Background(), t)
	s.Require().NoError(err)
	return msgs
}

func (s *DispatcherPostgresSuite) storedClaim(claim *claimmodels.Claim) *claimmodels.Claim {
	stored, err := s.claims.FindByID(context.Background(), claim.ID)
	s.Require().NoError(err)
	return stored
}

// =============================================================================
// Rollback
// =============================================================================

func (s *DispatcherPostgresSuite) TestFailedProcessorRollsBackEverything() {
	claim := s.activeClaim()
	s.enqueueEntitlementCheck(claim)
	failing := true
	s.lapseClaim(func() (models.MessageStatus, error) {
		if failing {
			return "", fmt.Errorf("deposit funds: %w", errors.New("card provider unavailable"))
		}
		return models.MessageStatusCompleted, nil
	})

	result, err := s.dispatcher.ProcessAll(s.ctx)

	s.Require().NoError(err)
	s.Equal(1, result.Errored[models.MessageTypeDetermineEntitlement])
	stored := s.storedClaim(claim)
	s.Equal(claimmodels.ClaimStatusActive, stored.ClaimStatus)
	s.Equal(claim.Version, stored.Version)
	s.Empty(s.pending(models.MessageTypeSendEmail), "follow-on message rolled back")
	s.Empty(s.processors[models.MessageTypeSendEmail].seen)
	s.Len(s.pending(models.MessageTypeDetermineEntitlement), 1, "message kept for the next sweep")

	s.Run("next sweep succeeds and deletes the message", func() {
		failing = false

		result, err := s.dispatcher.ProcessAll(s.ctx)

		s.Require().NoError(err)
		s.Equal(1, result.Completed[models.MessageTypeDetermineEntitlement])
		s.Empty(s.pending(models.MessageTypeDetermineEntitlement))
		stored := s.storedClaim(claim)
		s.Equal(claimmodels.ClaimStatusPendingExpiry, stored.ClaimStatus)
		s.Equal(claim.Version+1, stored.Version)
		s.Len(s.processors[models.MessageTypeSendEmail].seen, 1, "follow-on handled in the same sweep")
	})
}

func (s *DispatcherPostgresSuite) TestErrorStatusCommitsButKeepsMessage() {
	claim := s.activeClaim()
	s.enqueueEntitlementCheck(claim)
	s.lapseClaim(func() (models.MessageStatus, error) {
		return models.MessageStatusError, nil
	})
	s.processors[models.MessageTypeSendEmail].process = func(context.Context, *models.Message) (models.MessageStatus, error) {
		return models.MessageStatusError, nil
	}

	result, err := s.dispatcher.ProcessAll(s.ctx)

	s.Require().NoError(err)
	s.Equal(1, result.Errored[models.MessageTypeDetermineEntitlement])
	s.Equal(claimmodels.ClaimStatusPendingExpiry, s.storedClaim(claim).ClaimStatus)
	s.Len(s.pending(models.MessageTypeSendEmail), 1)
	s.Len(s.pending(models.MessageTypeDetermineEntitlement), 1)
}
