package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks CardClient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"claimflow/internal/audit"
	claimmodels "claimflow/internal/claim/models"
	claimstore "claimflow/internal/claim/store"
	"claimflow/internal/eligibility"
	"claimflow/internal/entitlement"
	messagemodels "claimflow/internal/message/models"
	messagestore "claimflow/internal/message/store"
	"claimflow/internal/payment/models"
	"claimflow/internal/payment/service/mocks"
	cyclestore "claimflow/internal/payment/store/cycle"
	paymentstore "claimflow/internal/payment/store/payment"
	"claimflow/pkg/platform/sentinel"
	"claimflow/pkg/requestcontext"
)

// =============================================================================
// Payment Cycle Service Test Suite
// =============================================================================
// Justification for unit tests: the balance ceiling and the expiry state
// machine have many edges that the end-to-end workflow only reaches after
// several simulated cycles.

type PaymentServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	card     *mocks.MockCardClient
	claims   *claimstore.InMemoryStore
	cycles   *cyclestore.InMemoryStore
	payments *paymentstore.InMemoryStore
	messages *messagestore.InMemoryStore
	audits   *audit.InMemoryStore
	service  *Service
	today    time.Time
	ctx      context.Context
	ninos    int
}

func TestPaymentServiceSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.card = mocks.NewMockCardClient(s.ctrl)
	s.claims = claimstore.NewInMemory()
	s.cycles = cyclestore.NewInMemory(s.claims)
	s.payments = paymentstore.NewInMemory()
	s.messages = messagestore.NewInMemory()
	s.audits = audit.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var err error
	s.service, err = New(s.cycles, s.payments, s.claims, s.card, s.messages,
		entitlement.NewCycleCalculator(entitlement.DefaultConfig()),
		audit.NewPublisher(s.audits, logger),
		WithLogger(logger),
		WithLimits(9920, 4),
	)
	s.Require().NoError(err)
	s.today = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.today.Add(9*time.Hour))
}

func (s *PaymentServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *PaymentServiceSuite) newClaim(status claimmodels.ClaimStatus, card claimmodels.CardStatus) *claimmodels.Claim {
	s.ninos++
	claim := claimmodels.NewClaim(claimmodels.Claimant{
		FirstName: "Lisa",
		LastName:  "Simpson",
		Nino:      fmt.Sprintf("QQ%06dC", s.ninos),
		Address:   claimmodels.Address{Postcode: "AA1 1AA"},
	}, status, claimmodels.EligibilityStatusEligible, "dwp-1", "hmrc-1", s.today.AddDate(0, -2, 0))
	claim.CardAccountID = "card-1"
	claim.CardStatus = card
	s.Require().NoError(s.claims.Create(context.Background(), claim))
	return claim
}

// twoChildrenUnderOne is 4 weeks of 2 vouchers per child, 16 vouchers, 4960 pence.
func twoChildrenUnderOne(start time.Time) entitlement.PaymentCycleVoucherEntitlement {
	var e entitlement.PaymentCycleVoucherEntitlement
	for i := 0; i < 4; i++ {
		e.VoucherEntitlements = append(e.VoucherEntitlements, entitlement.VoucherEntitlement{
			EntitlementDate:             start.AddDate(0, 0, 7*i),
			VouchersForChildrenUnderOne: 4,
			SingleVoucherValueInPence:   310,
		})
	}
	return e
}

func (s *PaymentServiceSuite) newCycle(claim *claimmodels.Claim, start time.Time) *models.PaymentCycle {
	cycle, err := s.service.CreatePaymentCycleForEligibleClaim(s.ctx, claim, start, twoChildrenUnderOne(start), nil)
	s.Require().NoError(err)
	return cycle
}

// =============================================================================
// Construction
// =============================================================================

func (s *PaymentServiceSuite) TestNewRequiresCollaborators() {
	calc := entitlement.NewCycleCalculator(entitlement.DefaultConfig())
	auditor := audit.NewPublisher(s.audits, nil)

	_, err := New(nil, s.payments, s.claims, s.card, s.messages, calc, auditor)
	s.ErrorContains(err, "payment cycle store is required")
	_, err = New(s.cycles, s.payments, s.claims, nil, s.messages, calc, auditor)
	s.ErrorContains(err, "card client is required")
	_, err = New(s.cycles, s.payments, s.claims, s.card, s.messages, calc, auditor, WithLimits(0, 4))
	s.ErrorContains(err, "must be positive")
	_, err = New(s.cycles, s.payments, s.claims, s.card, s.messages, calc, auditor, WithPendingExpiryCycleDuration(0))
	s.ErrorContains(err, "pending expiry cycle duration")
	_, err = New(s.cycles, s.payments, s.claims, s.card, s.messages, calc, auditor, WithPendingExpiryCycleDuration(29))
	s.ErrorContains(err, "pending expiry cycle duration")
}

// =============================================================================
// Cycles
// =============================================================================

func (s *PaymentServiceSuite) TestCreatePaymentCycleForEligibleClaim() {
	claim := s.newClaim(claimmodels.ClaimStatusActive, claimmodels.CardStatusActive)

	cycle := s.newCycle(claim, s.today)

	s.Equal(s.today, cycle.CycleStartDate)
	s.Equal(s.today.AddDate(0, 0, 27), cycle.CycleEndDate)
	s.Equal(models.PaymentCycleStatusNew, cycle.PaymentCycleStatus)
	s.Equal(claimmodels.EligibilityStatusEligible, cycle.EligibilityStatus)
	s.Equal(16, cycle.TotalVouchers)
	s.Equal(4960, cycle.TotalEntitlementAmountInPence)
	s.Equal(1, cycle.Version)
}

func (s *PaymentServiceSuite) TestUpdatePaymentCycle() {
	claim := s.newClaim(claimmodels.ClaimStatusActive, claimmodels.CardStatusActive)

	s.Run("eligible decision stores entitlement", func() {
		cycle := s.newCycle(claim, s.today)
		dob := []time.Time{s.today.AddDate(0, -3, 0)}
		e := twoChildrenUnderOne(s.today)
		e.VoucherEntitlements[0].BackdatedVouchers = 2

		err := s.service.UpdatePaymentCycle(s.ctx, cycle, eligibility.Decision{
			EligibilityStatus:     claimmodels.EligibilityStatusEligible,
			VoucherEntitlement:    e,
			DateOfBirthOfChildren: dob,
		})

		s.Require().NoError(err)
		s.Equal(18, cycle.TotalVouchers)
		s.Equal(dob, cycle.ChildrenDob)
		s.Equal(models.PaymentCycleStatusNew, cycle.PaymentCycleStatus)
	})

	s.Run("ineligible decision clears entitlement", func() {
		cycle := s.newCycle(claim, s.today.AddDate(0, 0, 28))

		err := s.service.UpdatePaymentCycle(s.ctx, cycle, eligibility.Decision{
			EligibilityStatus: claimmodels.EligibilityStatusIneligible,
		})

		s.Require().NoError(err)
		s.Nil(cycle.VoucherEntitlement)
		s.Zero(cycle.TotalEntitlementAmountInPence)
		s.Equal(models.PaymentCycleStatusIneligible, cycle.PaymentCycleStatus)
	})
}

// =============================================================================
// Payments
// =============================================================================

func (s *PaymentServiceSuite) TestCalculatePaymentAmount() {
	tests := []struct {
		name        string
		entitlement int
		balance     int
		amount      int
		status      models.PaymentCycleStatus
	}{
		{"empty card", 4960, 0, 4960, models.PaymentCycleStatusFullPaymentMade},
		{"room for all of it", 4960, 4960, 4960, models.PaymentCycleStatusFullPaymentMade},
		{"room for some of it", 4960, 6000, 3920, models.PaymentCycleStatusPartialPaymentMade},
		{"at the ceiling", 4960, 9920, 0, models.PaymentCycleStatusNoPaymentMade},
		{"over the ceiling", 4960, 12000, 0, models.PaymentCycleStatusNoPaymentMade},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			amount, status := CalculatePaymentAmount(tt.entitlement, tt.balance, 9920)
			s.Equal(tt.amount, amount)
			s.Equal(tt.status, status)
		})
	}
}

func (s *PaymentServiceSuite) TestMakeFirstPaymentDepositsWholeEntitlement() {
	claim := s.newClaim(claimmodels.ClaimStatusActive, claimmodels.CardStatusActive)
	cycle := s.newCycle(claim, s.today)
	s.card.EXPECT().
		DepositFunds(gomock.Any(), "card-1", models.DepositFundsRequest{AmountInPence: 4960, Reference: cycle.ID.String()}).
		Return(&models.DepositFundsResponse{ReferenceID: "dep-1"}, nil)

	result, err := s.service.MakeFirstPayment(s.ctx, claim, cycle)

	s.Require().NoError(err)
	s.Equal(4960, result.AmountInPence)
	s.Equal(models.PaymentCycleStatusFullPaymentMade, cycle.PaymentCycleStatus)
	payments, err := s.payments.FindByPaymentCycle(s.ctx, cycle.ID)
	s.Require().NoError(err)
	s.Require().Len(payments, 1)
	s.Equal("dep-1", payments[0].ResponseReference)
	s.Len(s.audits.ListByClaim(claim.ID), 1)
}

func (s *PaymentServiceSuite) TestMakePayment() {
	s.Run("partial payment up to the ceiling", func() {
		claim := s.newClaim(claimmodels.ClaimStatusActive, claimmodels.CardStatusActive)
		cycle := s.newCycle(claim, s.today)
		s.card.EXPECT().GetBalance(gomock.Any(), "card-1").
			Return(&models.CardBalance{AvailableBalanceInPence: 6000}, nil)
		s.card.EXPECT().
			DepositFunds(gomock.Any(), "card-1", models.DepositFundsRequest{AmountInPence: 3920, Reference: cycle.ID.String()}).
			Return(&models.DepositFundsResponse{ReferenceID: "dep-2"}, nil)

		result, err := s.service.MakePayment(s.ctx, claim, cycle)

		s.Require().NoError(err)
		s.Equal(3920, result.AmountInPence)
		s.Equal(models.PaymentCycleStatusPartialPaymentMade, cycle.PaymentCycleStatus)
		s.Require().NotNil(cycle.CardBalanceInPence)
		s.Equal(6000, *cycle.CardBalanceInPence)
	})

	s.Run("no deposit when the card is full", func() {
		claim := s.newClaim(claimmodels.ClaimStatusActive, claimmodels.CardStatusActive)
		cycle := s.newCycle(claim, s.today)
		s.card.EXPECT().GetBalance(gomock.Any(), "card-1").
			Return(&models.CardBalance{AvailableBalanceInPence: 9920}, nil)

		result, err := s.service.MakePayment(s.ctx, claim, cycle)

		s.Require().NoError(err)
		s.Zero(result.AmountInPence)
		s.Nil(result.Payment)
		s.Equal(models.PaymentCycleStatusNoPaymentMade, cycle.PaymentCycleStatus)
		events := s.audits.ListByClaim(claim.ID)
		s.Require().Len(events, 1)
		s.Equal(audit.EventBalanceTooHighForPayment, events[0].Type)
	})

	s.Run("paid cycle is not paid again", func() {
		claim := s.newClaim(claimmodels.ClaimStatusActive, claimmodels.CardStatusActive)
		cycle := s.newCycle(claim, s.today)
		cycle.PaymentCycleStatus = models.PaymentCycleStatusFullPaymentMade

		_, err := s.service.MakePayment(s.ctx, claim, cycle)

		s.ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("card provider failure leaves the cycle unpaid", func() {
		claim := s.newClaim(claimmodels.ClaimStatusActive, claimmodels.CardStatusActive)
		cycle := s.newCycle(claim, s.today)
		s.card.EXPECT().GetBalance(gomock.Any(), "card-1").Return(nil, sentinel.ErrUnavailable)

		_, err := s.service.MakePayment(s.ctx, claim, cycle)

		s.ErrorIs(err, sentinel.ErrUnavailable)
		stored, findErr := s.cycles.FindByID(s.ctx, cycle.ID)
		s.Require().NoError(findErr)
		s.Equal(models.PaymentCycleStatusNew, stored.PaymentCycleStatus)
	})
}

// =============================================================================
// Decisions
// =============================================================================

func (s *PaymentServiceSuite) TestHandleIneligibleDecision() {
	lostBenefit := eligibility.Decision{
		EligibilityStatus:       claimmodels.EligibilityStatusIneligible,
		QualifyingBenefitStatus: eligibility.QualifyingBenefitNotConfirmed,
	}
	noChildren := eligibility.Decision{
		EligibilityStatus:       claimmodels.EligibilityStatusIneligible,
		QualifyingBenefitStatus: eligibility.QualifyingBenefitConfirmed,
	}

	s.Run("active claim that lost its benefit is pending expiry", func() {
		claim := s.newClaim(claimmodels.ClaimStatusActive, claimmodels.CardStatusActive)
		current := s.newCycle(claim, s.today)

		t, err := s.service.HandleIneligibleDecision(s.ctx, claim, nil, current, lostBenefit)

		s.Require().NoError(err)
		s.Equal(Transition{From: claimmodels.ClaimStatusActive, To: claimmodels.ClaimStatusPendingExpiry, NoLongerEligible: true}, t)
		s.Equal(claimmodels.CardStatusPendingCancellation, claim.CardStatus)
		stored, err := s.claims.FindByID(s.ctx, claim.ID)
		s.Require().NoError(err)
		s.Equal(claimmodels.ClaimStatusPendingExpiry, stored.ClaimStatus)
		cycle, err := s.cycles.FindByID(s.ctx, current.ID)
		s.Require().NoError(err)
		s.Equal(s.today.AddDate(0, 0, 6), cycle.CycleEndDate)
	})

	s.Run("active claim with nothing to pay expires", func() {
		claim := s.newClaim(claimmodels.ClaimStatusActive, claimmodels.CardStatusActive)
		current := s.newCycle(claim, s.today)

		t, err := s.service.HandleIneligibleDecision(s.ctx, claim, nil, current, noChildren)

		s.Require().NoError(err)
		s.Equal(claimmodels.ClaimStatusExpired, t.To)
		s.False(t.NoLongerEligible)
		s.Equal(claimmodels.CardStatusPendingCancellation, claim.CardStatus)
	})

	s.Run("pending expiry claim waits out its cycles", func() {
		claim := s.newClaim(claimmodels.ClaimStatusPendingExpiry, claimmodels.CardStatusPendingCancellation)
		claim.ClaimStatusTimestamp = s.today.AddDate(0, 0, -28)
		current := s.newCycle(claim, s.today)

		t, err := s.service.HandleIneligibleDecision(s.ctx, claim, nil, current, lostBenefit)

		s.Require().NoError(err)
		s.False(t.Changed())
		s.Equal(claimmodels.ClaimStatusPendingExpiry, claim.ClaimStatus)
		cycle, err := s.cycles.FindByID(s.ctx, current.ID)
		s.Require().NoError(err)
		s.Equal(s.today.AddDate(0, 0, 6), cycle.CycleEndDate, "lapsing cycles last a week")
	})

	s.Run("weekly cycles count by elapsed days", func() {
		claim := s.newClaim(claimmodels.ClaimStatusPendingExpiry, claimmodels.CardStatusPendingCancellation)
		claim.ClaimStatusTimestamp = s.today.AddDate(0, 0, -105)
		current := s.newCycle(claim, s.today)

		t, err := s.service.HandleIneligibleDecision(s.ctx, claim, nil, current, lostBenefit)
		s.Require().NoError(err)
		s.False(t.Changed(), "fifteen weekly cycles are not four full cycles")

		next := s.newCycle(claim, s.today.AddDate(0, 0, 7))
		t, err = s.service.HandleIneligibleDecision(s.ctx, claim, current, next, lostBenefit)
		s.Require().NoError(err)
		s.Equal(claimmodels.ClaimStatusExpired, t.To)
	})

	s.Run("expiry leaves a card the sweep already cancelled", func() {
		claim := s.newClaim(claimmodels.ClaimStatusPendingExpiry, claimmodels.CardStatusCancelled)
		claim.ClaimStatusTimestamp = s.today.AddDate(0, 0, -4*28)
		current := s.newCycle(claim, s.today)

		t, err := s.service.HandleIneligibleDecision(s.ctx, claim, nil, current, lostBenefit)

		s.Require().NoError(err)
		s.Equal(claimmodels.ClaimStatusExpired, t.To)
		s.Equal(claimmodels.CardStatusCancelled, claim.CardStatus)
		stored, err := s.claims.FindByID(s.ctx, claim.ID)
		s.Require().NoError(err)
		s.Equal(claimmodels.ClaimStatusExpired, stored.ClaimStatus)
	})

	s.Run("pending expiry claim expires after four cycles", func() {
		claim := s.newClaim(claimmodels.ClaimStatusPendingExpiry, claimmodels.CardStatusPendingCancellation)
		claim.ClaimStatusTimestamp = s.today.AddDate(0, 0, -4*28).Add(15 * time.Hour)
		current := s.newCycle(claim, s.today)

		t, err := s.service.HandleIneligibleDecision(s.ctx, claim, nil, current, lostBenefit)

		s.Require().NoError(err)
		s.Equal(Transition{From: claimmodels.ClaimStatusPendingExpiry, To: claimmodels.ClaimStatusExpired}, t)
		s.Equal(claimmodels.CardStatusScheduledForCancellation, claim.CardStatus)
	})

	s.Run("lapsing claim with an over full card is flagged", func() {
		claim := s.newClaim(claimmodels.ClaimStatusPendingExpiry, claimmodels.CardStatusPendingCancellation)
		claim.ClaimStatusTimestamp = s.today.AddDate(0, 0, -28)
		previous := s.newCycle(claim, s.today.AddDate(0, 0, -28))
		previous.PaymentCycleStatus = models.PaymentCycleStatusNoPaymentMade
		current := s.newCycle(claim, s.today)

		_, err := s.service.HandleIneligibleDecision(s.ctx, claim, previous, current, lostBenefit)

		s.Require().NoError(err)
		stored, err := s.cycles.FindByID(s.ctx, current.ID)
		s.Require().NoError(err)
		s.Equal(models.PaymentCycleStatusBalanceTooHighError, stored.PaymentCycleStatus)
	})
}

func (s *PaymentServiceSuite) TestHandleEligibleDecision() {
	s.Run("pending expiry claim is restored", func() {
		claim := s.newClaim(claimmodels.ClaimStatusPendingExpiry, claimmodels.CardStatusPendingCancellation)

		t, err := s.service.HandleEligibleDecision(s.ctx, claim)

		s.Require().NoError(err)
		s.Equal(Transition{From: claimmodels.ClaimStatusPendingExpiry, To: claimmodels.ClaimStatusActive}, t)
		s.Equal(claimmodels.CardStatusActive, claim.CardStatus)
	})

	s.Run("card scheduled for cancellation is reactivated", func() {
		claim := s.newClaim(claimmodels.ClaimStatusPendingExpiry, claimmodels.CardStatusScheduledForCancellation)

		t, err := s.service.HandleEligibleDecision(s.ctx, claim)

		s.Require().NoError(err)
		s.Equal(claimmodels.ClaimStatusActive, t.To)
		s.Equal(claimmodels.CardStatusActive, claim.CardStatus)
	})

	s.Run("cancelled card expires the claim", func() {
		claim := s.newClaim(claimmodels.ClaimStatusPendingExpiry, claimmodels.CardStatusCancelled)

		t, err := s.service.HandleEligibleDecision(s.ctx, claim)

		s.Require().NoError(err)
		s.Equal(Transition{From: claimmodels.ClaimStatusPendingExpiry, To: claimmodels.ClaimStatusExpired}, t)
		s.Equal(claimmodels.CardStatusCancelled, claim.CardStatus)
		stored, err := s.claims.FindByID(s.ctx, claim.ID)
		s.Require().NoError(err)
		s.Equal(claimmodels.ClaimStatusExpired, stored.ClaimStatus)
	})

	s.Run("active claim is untouched", func() {
		claim := s.newClaim(claimmodels.ClaimStatusActive, claimmodels.CardStatusActive)

		t, err := s.service.HandleEligibleDecision(s.ctx, claim)

		s.Require().NoError(err)
		s.False(t.Changed())
		s.Equal(1, claim.Version)
	})
}

// =============================================================================
// Rollover
// =============================================================================

func (s *PaymentServiceSuite) TestCreateNewPaymentCycles() {
	active := s.newClaim(claimmodels.ClaimStatusActive, claimmodels.CardStatusActive)
	ended := s.newCycle(active, s.today.AddDate(0, 0, -28))
	dob := []time.Time{s.today.AddDate(0, -5, 0)}
	ended.ChildrenDob = dob
	s.Require().NoError(s.cycles.Update(s.ctx, ended))

	result, err := s.service.CreateNewPaymentCycles(s.ctx)

	s.Require().NoError(err)
	s.Equal(RolloverResult{Created: 1}, result)
	next, err := s.cycles.FindCurrentForClaim(s.ctx, active.ID)
	s.Require().NoError(err)
	s.Equal(s.today, next.CycleStartDate)
	s.Equal(models.PaymentCycleStatusNew, next.PaymentCycleStatus)
	s.Equal(dob, next.ChildrenDob)

	pending, err := s.messages.FindPending(s.ctx, messagemodels.MessageTypeDetermineEntitlement)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	payload, err := messagemodels.DecodePayload[messagemodels.DetermineEntitlementPayload](pending[0])
	s.Require().NoError(err)
	s.Equal(ended.ID, payload.PreviousPaymentCycleID)
	s.Equal(next.ID, payload.CurrentPaymentCycleID)

	s.Run("running again creates nothing", func() {
		again, err := s.service.CreateNewPaymentCycles(s.ctx)
		s.Require().NoError(err)
		s.Zero(again.Created)
	})
}

func (s *PaymentServiceSuite) TestCreateNewPaymentCyclesIsolatesFailures() {
	claim := s.newClaim(claimmodels.ClaimStatusActive, claimmodels.CardStatusActive)
	s.newCycle(claim, s.today.AddDate(0, 0, -28))
	failing := &failingQueue{err: errors.New("queue down")}
	svc, err := New(s.cycles, s.payments, s.claims, s.card, failing,
		entitlement.NewCycleCalculator(entitlement.DefaultConfig()),
		audit.NewPublisher(s.audits, nil),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)

	result, err := svc.CreateNewPaymentCycles(s.ctx)

	s.Require().NoError(err)
	s.Equal(RolloverResult{Failed: 1}, result)
}

type failingQueue struct {
	err error
}

func (q *failingQueue) Enqueue(context.Context, messagemodels.MessageType, any) (uuid.UUID, error) {
	return uuid.Nil, q.err
}
