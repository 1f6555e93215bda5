package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	claimmodels "claimflow/internal/claim/models"
	"claimflow/internal/eligibility"
	"claimflow/internal/eligibility/metrics"
	"claimflow/internal/entitlement"
	"claimflow/pkg/requestcontext"
)

// EligibilityClient checks a claimant against the benefit systems.
type EligibilityClient interface {
	CheckEligibility(ctx context.Context, claimant claimmodels.Claimant) (*eligibility.Response, error)
}

// ClaimStore answers the duplicate claim questions.
type ClaimStore interface {
	FindLiveClaimsWithNino(ctx context.Context, nino string) ([]*claimmodels.Claim, error)
	LiveClaimExistsForHousehold(ctx context.Context, dwpHousehold, hmrcHousehold string) (bool, error)
}

const (
	kindNewClaim     = "new_claim"
	kindPaymentCycle = "payment_cycle"
)

// Service evaluates claimants for new claims and for each payment cycle.
type Service struct {
	client     EligibilityClient
	claims     ClaimStore
	calculator *entitlement.CycleCalculator
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

type Option func(s *Service)

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

// New constructs a Service.
func New(client EligibilityClient, claims ClaimStore, calculator *entitlement.CycleCalculator, opts ...Option) (*Service, error) {
	if client == nil {
		return nil, errors.New("eligibility client is required")
	}
	if claims == nil {
		return nil, errors.New("claim store is required")
	}
	if calculator == nil {
		return nil, errors.New("entitlement calculator is required")
	}
	s := &Service{
		client:     client,
		claims:     claims,
		calculator: calculator,
		logger:     slog.Default(),
		tracer:     otel.Tracer("claimflow/eligibility"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// EvaluateNewClaimant decides eligibility and entitlement for a claim that
// is being created. Entitlement starts today.
//
// A claimant who already has a live claim gets a decision carrying that
// claim's id. Otherwise a claimant from a household that already has a live
// claim is a DUPLICATE, whatever the eligibility service said.
func (s *Service) EvaluateNewClaimant(ctx context.Context, claimant claimmodels.Claimant) (*eligibility.Decision, error) {
	liveClaims, err := s.claims.FindLiveClaimsWithNino(ctx, claimant.Nino)
	if err != nil {
		return nil, fmt.Errorf("find live claims: %w", err)
	}
	if len(liveClaims) > 1 {
		ids := make([]string, 0, len(liveClaims))
		for _, c := range liveClaims {
			ids = append(ids, c.ID.String())
		}
		s.logger.ErrorContext(ctx, "multiple live claims for one nino", slog.Any("claim_ids", ids))
		return nil, fmt.Errorf("%d live claims %v: %w", len(liveClaims), ids, eligibility.ErrMultipleClaimsWithSameNino)
	}

	checked, err := s.checkEligibility(ctx, claimant)
	if err != nil {
		return nil, err
	}
	resp := *checked

	e := s.calculator.CalculateEntitlement(claimant.ExpectedDeliveryDate, resp.DateOfBirthOfChildren, requestcontext.Today(ctx))

	if len(liveClaims) == 1 {
		existingID := liveClaims[0].ID
		decision := eligibility.NewDecision(resp, e, &existingID)
		s.metrics.IncrementDecision(kindNewClaim, string(decision.EligibilityStatus))
		return &decision, nil
	}

	if resp.DWPHouseholdIdentifier != "" || resp.HMRCHouseholdIdentifier != "" {
		duplicate, err := s.claims.LiveClaimExistsForHousehold(ctx, resp.DWPHouseholdIdentifier, resp.HMRCHouseholdIdentifier)
		if err != nil {
			return nil, fmt.Errorf("check household claims: %w", err)
		}
		if duplicate {
			resp.EligibilityStatus = claimmodels.EligibilityStatusDuplicate
		}
	}

	decision := eligibility.NewDecision(resp, e, nil)
	s.metrics.IncrementDecision(kindNewClaim, string(decision.EligibilityStatus))
	return &decision, nil
}

// EvaluateClaimantForPaymentCycle re-evaluates an existing claimant for the
// cycle starting at cycleStart. previous, when present, supplies the
// backdating context.
func (s *Service) EvaluateClaimantForPaymentCycle(
	ctx context.Context,
	claimant claimmodels.Claimant,
	cycleStart time.Time,
	previous *entitlement.PreviousCycle,
) (*eligibility.Decision, error) {
	resp, err := s.checkEligibility(ctx, claimant)
	if err != nil {
		return nil, err
	}
	e := s.calculator.CalculateEntitlementWithBackdating(claimant.ExpectedDeliveryDate, resp.DateOfBirthOfChildren, cycleStart, previous)
	decision := eligibility.NewDecision(*resp, e, nil)
	s.metrics.IncrementDecision(kindPaymentCycle, string(decision.EligibilityStatus))
	return &decision, nil
}

func (s *Service) checkEligibility(ctx context.Context, claimant claimmodels.Claimant) (*eligibility.Response, error) {
	ctx, span := s.tracer.Start(ctx, "eligibility.check")
	defer span.End()

	start := time.Now()
	resp, err := s.client.CheckEligibility(ctx, claimant)
	s.metrics.ObserveClientLatency(time.Since(start))
	if err != nil {
		s.metrics.IncrementClientFailure()
		span.RecordError(err)
		span.SetStatus(codes.Error, "eligibility check failed")
		return nil, fmt.Errorf("check eligibility: %w", err)
	}
	if resp == nil {
		return nil, errors.New("check eligibility: empty response")
	}
	span.SetAttributes(attribute.String("eligibility.status", string(resp.EligibilityStatus)))
	return resp, nil
}
