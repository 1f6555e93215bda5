package service

import (
	"context"
	"fmt"
	"log/slog"

	"claimflow/internal/claim/models"
	"claimflow/internal/eligibility"
	messagemodels "claimflow/internal/message/models"
	"claimflow/internal/reporting"
	"claimflow/pkg/requestcontext"
)

// ClaimResult is the outcome of CreateClaim. Existing is set when the
// claimant already had a live claim and Claim is that claim, unchanged.
type ClaimResult struct {
	Claim    *models.Claim
	Decision *eligibility.Decision
	Existing bool
}

// CreateClaim evaluates a claimant and records the claim the decision
// leads to. Claims that are NEW get a card requested for them.
//
// When evaluation or persistence fails the claim is recorded with status
// ERROR and the failure is returned.
func (s *Service) CreateClaim(ctx context.Context, claimant models.Claimant) (ClaimResult, error) {
	if err := claimant.Validate(); err != nil {
		return ClaimResult{}, err
	}

	var result ClaimResult
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		result, err = s.createClaim(txCtx, claimant)
		return err
	})
	if err != nil {
		s.recordErrorClaim(ctx, claimant, err)
		return ClaimResult{}, fmt.Errorf("create claim: %w", err)
	}
	if !result.Existing {
		s.metrics.IncrementClaimsCreated(string(result.Claim.ClaimStatus))
	}
	return result, nil
}

func (s *Service) createClaim(ctx context.Context, claimant models.Claimant) (ClaimResult, error) {
	decision, err := s.eligibility.EvaluateNewClaimant(ctx, claimant)
	if err != nil {
		return ClaimResult{}, err
	}

	if decision.ExistingClaimID != nil {
		existing, err := s.claims.FindByID(ctx, *decision.ExistingClaimID)
		if err != nil {
			return ClaimResult{}, fmt.Errorf("load existing claim %s: %w", *decision.ExistingClaimID, err)
		}
		s.logger.InfoContext(ctx, "claimant already has a live claim",
			slog.String("claim_id", existing.ID.String()),
			slog.String("claim_status", string(existing.ClaimStatus)),
		)
		return ClaimResult{Claim: existing, Decision: decision, Existing: true}, nil
	}

	status := claimStatusFor(decision.EligibilityStatus)
	claim := models.NewClaim(claimant, status, decision.EligibilityStatus,
		decision.DWPHouseholdIdentifier, decision.HMRCHouseholdIdentifier, requestcontext.Now(ctx))
	if err := s.claims.Create(ctx, claim); err != nil {
		return ClaimResult{}, fmt.Errorf("save claim: %w", err)
	}
	s.auditor.AuditNewClaim(ctx, claim)

	_, err = s.messages.Enqueue(ctx, messagemodels.MessageTypeReportClaim, messagemodels.ReportClaimPayload{
		ClaimID:     claim.ID,
		ClaimAction: reporting.ClaimActionNew,
		Timestamp:   requestcontext.Now(ctx),
	})
	if err != nil {
		return ClaimResult{}, fmt.Errorf("queue new claim report: %w", err)
	}

	if status == models.ClaimStatusNew {
		_, err = s.messages.Enqueue(ctx, messagemodels.MessageTypeRequestNewCard, messagemodels.RequestNewCardPayload{
			ClaimID:                claim.ID,
			VoucherEntitlement:     decision.VoucherEntitlement,
			DatesOfBirthOfChildren: decision.DateOfBirthOfChildren,
		})
		if err != nil {
			return ClaimResult{}, fmt.Errorf("queue card request: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "claim created",
		slog.String("claim_id", claim.ID.String()),
		slog.String("claim_status", string(claim.ClaimStatus)),
		slog.String("eligibility_status", string(claim.EligibilityStatus)),
	)
	return ClaimResult{Claim: claim, Decision: decision}, nil
}

// recordErrorClaim runs outside the failed transaction so the attempt is
// kept even though everything else was rolled back.
func (s *Service) recordErrorClaim(ctx context.Context, claimant models.Claimant, cause error) {
	claim := models.NewClaim(claimant, models.ClaimStatusError, models.EligibilityStatusError, "", "", requestcontext.Now(ctx))
	if err := s.claims.Create(ctx, claim); err != nil {
		s.logger.ErrorContext(ctx, "failed to save claim in error status",
			slog.Any("cause", cause),
			slog.Any("error", err),
		)
		return
	}
	s.metrics.IncrementClaimsCreated(string(models.ClaimStatusError))
	s.logger.ErrorContext(ctx, "claim creation failed",
		slog.String("claim_id", claim.ID.String()),
		slog.Any("error", cause),
	)
}

func claimStatusFor(status models.EligibilityStatus) models.ClaimStatus {
	switch status {
	case models.EligibilityStatusEligible:
		return models.ClaimStatusNew
	case models.EligibilityStatusPending:
		return models.ClaimStatusPending
	case models.EligibilityStatusNoMatch,
		models.EligibilityStatusDuplicate,
		models.EligibilityStatusIneligible:
		return models.ClaimStatusRejected
	default:
		return models.ClaimStatusError
	}
}
