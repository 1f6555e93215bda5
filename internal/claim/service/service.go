// Package service creates claims and runs the card cancellation sweeps.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"claimflow/internal/audit"
	"claimflow/internal/claim/models"
	"claimflow/internal/eligibility"
	"claimflow/internal/entitlement"
	messagemodels "claimflow/internal/message/models"
	"claimflow/internal/platform/metrics"
	"claimflow/pkg/platform/tx"
)

// ClaimStore persists claims.
type ClaimStore interface {
	Create(ctx context.Context, claim *models.Claim) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	Update(ctx context.Context, claim *models.Claim) error
	FindByCardStatus(ctx context.Context, status models.CardStatus) ([]*models.Claim, error)
	FindByCardStatusChangedBefore(ctx context.Context, status models.CardStatus, cutoff time.Time) ([]*models.Claim, error)
}

// EligibilityService decides whether a new claimant is eligible.
type EligibilityService interface {
	EvaluateNewClaimant(ctx context.Context, claimant models.Claimant) (*eligibility.Decision, error)
}

// MessageQueue enqueues follow-on work.
type MessageQueue interface {
	Enqueue(ctx context.Context, t messagemodels.MessageType, payload any) (uuid.UUID, error)
}

const defaultPendingExpiryCycles = 4

type Service struct {
	claims              ClaimStore
	eligibility         EligibilityService
	messages            MessageQueue
	auditor             *audit.Publisher
	tx                  tx.Runner
	cycleDurationDays   int
	pendingExpiryCycles int
	logger              *slog.Logger
	metrics             *metrics.Metrics
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

// WithTxRunner sets the unit of work for claim creation and for each claim
// touched by a sweep. Without it every step runs directly against the stores.
func WithTxRunner(runner tx.Runner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

// WithPendingExpiryCycles sets how many payment cycles a card stays pending
// cancellation before it is scheduled for cancellation.
func WithPendingExpiryCycles(n int) Option {
	return func(s *Service) {
		s.pendingExpiryCycles = n
	}
}

func New(
	claims ClaimStore,
	eligibilityService EligibilityService,
	messages MessageQueue,
	auditor *audit.Publisher,
	calculator *entitlement.CycleCalculator,
	opts ...Option,
) (*Service, error) {
	if claims == nil {
		return nil, errors.New("claim store is required")
	}
	if eligibilityService == nil {
		return nil, errors.New("eligibility service is required")
	}
	if messages == nil {
		return nil, errors.New("message queue is required")
	}
	if auditor == nil {
		return nil, errors.New("auditor is required")
	}
	if calculator == nil {
		return nil, errors.New("entitlement calculator is required")
	}
	s := &Service{
		claims:              claims,
		eligibility:         eligibilityService,
		messages:            messages,
		auditor:             auditor,
		tx:                  tx.NoopRunner{},
		cycleDurationDays:   calculator.CycleDurationDays(),
		pendingExpiryCycles: defaultPendingExpiryCycles,
		logger:              slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pendingExpiryCycles <= 0 {
		return nil, errors.New("pending expiry cycles must be positive")
	}
	return s, nil
}
