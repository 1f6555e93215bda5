package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	claimmodels "claimflow/internal/claim/models"
	"claimflow/internal/eligibility"
	"claimflow/internal/payment/models"
	"claimflow/pkg/requestcontext"
)

// Transition is the claim status change caused by a decision. From equals To
// when the claim was left alone.
type Transition struct {
	From claimmodels.ClaimStatus
	To   claimmodels.ClaimStatus
	// NoLongerEligible is set when the claimant should be told their claim is
	// lapsing.
	NoLongerEligible bool
}

func (t Transition) Changed() bool {
	return t.From != t.To
}

// HandleEligibleDecision restores a lapsing claim. It reports whether
// payments are restarting. A lapsing claim whose card has already been
// cancelled cannot be paid again and expires instead.
func (s *Service) HandleEligibleDecision(ctx context.Context, claim *claimmodels.Claim) (Transition, error) {
	t := Transition{From: claim.ClaimStatus, To: claim.ClaimStatus}
	if claim.ClaimStatus != claimmodels.ClaimStatusPendingExpiry {
		return t, nil
	}
	now := requestcontext.Now(ctx)
	if claim.CardStatus == claimmodels.CardStatusCancelled {
		s.logger.WarnContext(ctx, "eligible claim has a cancelled card, expiring it",
			slog.String("claim_id", claim.ID.String()),
			slog.String("card_account_id", claim.CardAccountID),
		)
		if err := claim.UpdateClaimStatus(claimmodels.ClaimStatusExpired, now); err != nil {
			return t, err
		}
	} else {
		if err := claim.UpdateClaimStatus(claimmodels.ClaimStatusActive, now); err != nil {
			return t, err
		}
		if err := claim.UpdateCardStatus(claimmodels.CardStatusActive, now); err != nil {
			return t, err
		}
	}
	if err := s.claims.Update(ctx, claim); err != nil {
		return t, fmt.Errorf("reactivate claim %s: %w", claim.ID, err)
	}
	t.To = claim.ClaimStatus
	return t, nil
}

// HandleIneligibleDecision moves a claim towards expiry after an ineligible
// decision for the current cycle:
//   - an ACTIVE claim whose claimant lost their qualifying benefit becomes
//     PENDING_EXPIRY, giving them time to reclaim
//   - an ACTIVE claim with nothing left to pay for expires
//   - a PENDING_EXPIRY claim expires once it has been pending for the
//     configured number of cycles
//
// While a claim stays PENDING_EXPIRY its current cycle is cut to the pending
// expiry duration.
func (s *Service) HandleIneligibleDecision(
	ctx context.Context,
	claim *claimmodels.Claim,
	previous, current *models.PaymentCycle,
	decision eligibility.Decision,
) (Transition, error) {
	t := Transition{From: claim.ClaimStatus, To: claim.ClaimStatus}
	now := requestcontext.Now(ctx)

	var (
		toClaim claimmodels.ClaimStatus
		toCard  claimmodels.CardStatus
	)
	switch claim.ClaimStatus {
	case claimmodels.ClaimStatusActive:
		toCard = claimmodels.CardStatusPendingCancellation
		if decision.LostQualifyingBenefit() {
			toClaim = claimmodels.ClaimStatusPendingExpiry
			t.NoLongerEligible = true
			if err := s.shortenCycle(ctx, current); err != nil {
				return t, err
			}
		} else {
			toClaim = claimmodels.ClaimStatusExpired
		}
	case claimmodels.ClaimStatusPendingExpiry:
		if previous != nil && previous.PaymentCycleStatus == models.PaymentCycleStatusNoPaymentMade {
			if err := s.flagBalanceTooHigh(ctx, current); err != nil {
				return t, err
			}
		}
		if !s.pendingExpiryElapsed(claim, current.CycleStartDate) {
			return t, s.shortenCycle(ctx, current)
		}
		toClaim = claimmodels.ClaimStatusExpired
		toCard = claimmodels.CardStatusScheduledForCancellation
	default:
		return t, nil
	}

	if err := claim.UpdateClaimStatus(toClaim, now); err != nil {
		return t, err
	}
	if !claim.CardCancellationReached(toCard) {
		if err := claim.UpdateCardStatus(toCard, now); err != nil {
			return t, err
		}
	}
	if err := s.claims.Update(ctx, claim); err != nil {
		return t, fmt.Errorf("update claim %s after ineligible decision: %w", claim.ID, err)
	}
	t.To = claim.ClaimStatus
	return t, nil
}

// pendingExpiryElapsed is true once cycleStart is at least
// pendingExpiryCycles full-length cycles after the claim became
// PENDING_EXPIRY. Shortened cycles do not count towards it; only elapsed
// days do.
func (s *Service) pendingExpiryElapsed(claim *claimmodels.Claim, cycleStart time.Time) bool {
	days := s.pendingExpiryCycles * s.calculator.CycleDurationDays()
	expiry := claim.ClaimStatusDate().AddDate(0, 0, days)
	return !expiry.After(cycleStart)
}

func (s *Service) shortenCycle(ctx context.Context, cycle *models.PaymentCycle) error {
	end := cycle.CycleStartDate.AddDate(0, 0, s.pendingExpiryCycleDurationDays-1)
	if !end.Before(cycle.CycleEndDate) {
		return nil
	}
	cycle.CycleEndDate = end
	cycle.UpdatedAt = requestcontext.Now(ctx)
	if err := s.cycles.Update(ctx, cycle); err != nil {
		return fmt.Errorf("shorten payment cycle %s: %w", cycle.ID, err)
	}
	return nil
}

// flagBalanceTooHigh marks a lapsing cycle whose card was too full to pay
// last time, so the balance can be dealt with by hand.
func (s *Service) flagBalanceTooHigh(ctx context.Context, cycle *models.PaymentCycle) error {
	cycle.PaymentCycleStatus = models.PaymentCycleStatusBalanceTooHighError
	cycle.UpdatedAt = requestcontext.Now(ctx)
	if err := s.cycles.Update(ctx, cycle); err != nil {
		return fmt.Errorf("flag payment cycle %s: %w", cycle.ID, err)
	}
	return nil
}
