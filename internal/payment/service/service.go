package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"claimflow/internal/audit"
	claimmodels "claimflow/internal/claim/models"
	"claimflow/internal/eligibility"
	"claimflow/internal/entitlement"
	messagemodels "claimflow/internal/message/models"
	"claimflow/internal/payment/metrics"
	"claimflow/internal/payment/models"
	"claimflow/pkg/platform/tx"
	"claimflow/pkg/requestcontext"
)

// CycleStore persists payment cycles.
type CycleStore interface {
	Create(ctx context.Context, cycle *models.PaymentCycle) error
	Update(ctx context.Context, cycle *models.PaymentCycle) error
	FindCyclesDueForRollover(ctx context.Context, today time.Time) ([]*models.PaymentCycle, error)
}

// PaymentStore records deposits.
type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
}

// ClaimStore persists claim status changes driven by eligibility decisions.
type ClaimStore interface {
	Update(ctx context.Context, claim *claimmodels.Claim) error
}

// CardClient is the card provider.
type CardClient interface {
	GetBalance(ctx context.Context, cardAccountID string) (*models.CardBalance, error)
	DepositFunds(ctx context.Context, cardAccountID string, req models.DepositFundsRequest) (*models.DepositFundsResponse, error)
}

// MessageQueue enqueues follow-on work.
type MessageQueue interface {
	Enqueue(ctx context.Context, t messagemodels.MessageType, payload any) (uuid.UUID, error)
}

// Service is the payment cycle service. It creates and updates payment
// cycles, pays them, and moves claims through the states that follow from
// each cycle's eligibility decision.
type Service struct {
	cycles     CycleStore
	payments   PaymentStore
	claims     ClaimStore
	card       CardClient
	messages   MessageQueue
	tx         tx.Runner
	calculator *entitlement.CycleCalculator
	auditor    *audit.Publisher

	maxCardBalanceInPence          int
	pendingExpiryCycles            int
	pendingExpiryCycleDurationDays int

	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTxRunner sets the unit of work used per claim during rollover.
func WithTxRunner(runner tx.Runner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

// WithLimits sets the card balance ceiling and the number of cycles a
// claim stays PENDING_EXPIRY before it expires.
func WithLimits(maxCardBalanceInPence, pendingExpiryCycles int) Option {
	return func(s *Service) {
		s.maxCardBalanceInPence = maxCardBalanceInPence
		s.pendingExpiryCycles = pendingExpiryCycles
	}
}

// WithPendingExpiryCycleDuration sets the length in days of a cycle whose
// claim is PENDING_EXPIRY, so a lapsing claimant is re-checked sooner.
func WithPendingExpiryCycleDuration(days int) Option {
	return func(s *Service) {
		s.pendingExpiryCycleDurationDays = days
	}
}

const (
	defaultMaxCardBalanceInPence          = 9920
	defaultPendingExpiryCycles            = 4
	defaultPendingExpiryCycleDurationDays = 7
)

func New(
	cycles CycleStore,
	payments PaymentStore,
	claims ClaimStore,
	card CardClient,
	messages MessageQueue,
	calculator *entitlement.CycleCalculator,
	auditor *audit.Publisher,
	opts ...Option,
) (*Service, error) {
	if cycles == nil {
		return nil, errors.New("payment cycle store is required")
	}
	if payments == nil {
		return nil, errors.New("payment store is required")
	}
	if claims == nil {
		return nil, errors.New("claim store is required")
	}
	if card == nil {
		return nil, errors.New("card client is required")
	}
	if messages == nil {
		return nil, errors.New("message queue is required")
	}
	if calculator == nil {
		return nil, errors.New("entitlement calculator is required")
	}
	if auditor == nil {
		return nil, errors.New("audit publisher is required")
	}
	s := &Service{
		cycles:                cycles,
		payments:              payments,
		claims:                claims,
		card:                  card,
		messages:              messages,
		tx:                    tx.NoopRunner{},
		calculator:            calculator,
		auditor:               auditor,
		maxCardBalanceInPence: defaultMaxCardBalanceInPence,
		pendingExpiryCycles:   defaultPendingExpiryCycles,
		logger:                slog.Default(),

		pendingExpiryCycleDurationDays: defaultPendingExpiryCycleDurationDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxCardBalanceInPence <= 0 || s.pendingExpiryCycles <= 0 {
		return nil, errors.New("card balance ceiling and pending expiry cycles must be positive")
	}
	if s.pendingExpiryCycleDurationDays <= 0 || s.pendingExpiryCycleDurationDays > calculator.CycleDurationDays() {
		return nil, errors.New("pending expiry cycle duration must be positive and no longer than a payment cycle")
	}
	return s, nil
}

func (s *Service) newCycle(ctx context.Context, claimID uuid.UUID, start time.Time) *models.PaymentCycle {
	now := requestcontext.Now(ctx)
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	return &models.PaymentCycle{
		ID:                 uuid.New(),
		ClaimID:            claimID,
		CycleStartDate:     start,
		CycleEndDate:       s.calculator.CycleEndDate(start),
		PaymentCycleStatus: models.PaymentCycleStatusNew,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// CreatePaymentCycleForEligibleClaim saves the first cycle of a claim whose
// entitlement is already known.
func (s *Service) CreatePaymentCycleForEligibleClaim(
	ctx context.Context,
	claim *claimmodels.Claim,
	start time.Time,
	voucherEntitlement entitlement.PaymentCycleVoucherEntitlement,
	childrenDob []time.Time,
) (*models.PaymentCycle, error) {
	cycle := s.newCycle(ctx, claim.ID, start)
	cycle.EligibilityStatus = claimmodels.EligibilityStatusEligible
	cycle.ChildrenDob = childrenDob
	cycle.ExpectedDeliveryDate = claim.Claimant.ExpectedDeliveryDate
	cycle.ApplyEntitlement(voucherEntitlement)
	if err := s.cycles.Create(ctx, cycle); err != nil {
		return nil, fmt.Errorf("create first payment cycle for claim %s: %w", claim.ID, err)
	}
	s.metrics.IncrementCyclesCreated()
	return cycle, nil
}

// UpdatePaymentCycle stores the outcome of a cycle's eligibility decision.
// An ineligible cycle keeps no entitlement and will not be paid.
func (s *Service) UpdatePaymentCycle(ctx context.Context, cycle *models.PaymentCycle, decision eligibility.Decision) error {
	cycle.EligibilityStatus = decision.EligibilityStatus
	cycle.ChildrenDob = decision.DateOfBirthOfChildren
	if decision.IsEligible() {
		cycle.ApplyEntitlement(decision.VoucherEntitlement)
	} else {
		cycle.ClearEntitlement()
		cycle.PaymentCycleStatus = models.PaymentCycleStatusIneligible
	}
	cycle.UpdatedAt = requestcontext.Now(ctx)
	if err := s.cycles.Update(ctx, cycle); err != nil {
		return fmt.Errorf("update payment cycle %s: %w", cycle.ID, err)
	}
	return nil
}
