package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	claimmodels "claimflow/internal/claim/models"
	"claimflow/internal/eligibility"
	"claimflow/internal/entitlement"
	"claimflow/internal/message/models"
	"claimflow/internal/notification"
	paymentmodels "claimflow/internal/payment/models"
	"claimflow/internal/reporting"
)

// DetermineEntitlement re-checks a claimant at the start of a new payment
// cycle and either queues the payment or moves the claim towards expiry.
type DetermineEntitlement struct {
	claims      ClaimStore
	cycles      CycleStore
	eligibility EligibilityService
	payments    PaymentService
	messages    MessageQueue
	pregnancy   *entitlement.PregnancyCalculator
}

func NewDetermineEntitlement(
	claims ClaimStore,
	cycles CycleStore,
	eligibilityService EligibilityService,
	payments PaymentService,
	messages MessageQueue,
	pregnancy *entitlement.PregnancyCalculator,
) (*DetermineEntitlement, error) {
	if claims == nil || cycles == nil || eligibilityService == nil || payments == nil || messages == nil || pregnancy == nil {
		return nil, errors.New("determine entitlement: all collaborators are required")
	}
	return &DetermineEntitlement{
		claims:      claims,
		cycles:      cycles,
		eligibility: eligibilityService,
		payments:    payments,
		messages:    messages,
		pregnancy:   pregnancy,
	}, nil
}

func (p *DetermineEntitlement) MessageType() models.MessageType {
	return models.MessageTypeDetermineEntitlement
}

func (p *DetermineEntitlement) Process(ctx context.Context, msg *models.Message) (models.MessageStatus, error) {
	payload, err := models.DecodePayload[models.DetermineEntitlementPayload](msg)
	if err != nil {
		return "", err
	}
	claim, err := p.claims.FindByID(ctx, payload.ClaimID)
	if err != nil {
		return "", fmt.Errorf("load claim %s: %w", payload.ClaimID, err)
	}
	previous, err := p.findCycle(ctx, payload.PreviousPaymentCycleID)
	if err != nil {
		return "", err
	}
	current, err := p.findCycle(ctx, payload.CurrentPaymentCycleID)
	if err != nil {
		return "", err
	}
	if current == nil {
		return "", fmt.Errorf("determine entitlement for claim %s: no current payment cycle", claim.ID)
	}
	// A decided cycle means this message was delivered twice.
	if current.PaymentCycleStatus != paymentmodels.PaymentCycleStatusNew {
		return models.MessageStatusCompleted, nil
	}

	decision, err := p.eligibility.EvaluateClaimantForPaymentCycle(ctx, claim.Claimant, current.CycleStartDate, previous.AsPreviousCycle())
	if err != nil {
		return "", fmt.Errorf("evaluate claim %s for cycle %s: %w", claim.ID, current.ID, err)
	}
	if err := p.payments.UpdatePaymentCycle(ctx, current, *decision); err != nil {
		return "", err
	}

	if decision.IsEligible() {
		err = p.handleEligible(ctx, claim, current)
	} else {
		err = p.handleIneligible(ctx, claim, previous, current, *decision)
	}
	if err != nil {
		return "", err
	}
	return models.MessageStatusCompleted, nil
}

func (p *DetermineEntitlement) handleEligible(ctx context.Context, claim *claimmodels.Claim, current *paymentmodels.PaymentCycle) error {
	transition, err := p.payments.HandleEligibleDecision(ctx, claim)
	if err != nil {
		return err
	}
	if claim.ClaimStatus != claimmodels.ClaimStatusActive {
		return queueReport(ctx, p.messages, claim, reporting.ActionForTransition(transition.From, transition.To))
	}
	_, err = p.messages.Enqueue(ctx, models.MessageTypeMakePayment, models.MakePaymentPayload{
		ClaimID:          claim.ID,
		PaymentCycleID:   current.ID,
		CardAccountID:    claim.CardAccountID,
		PaymentRestarted: transition.Changed(),
	})
	if err != nil {
		return fmt.Errorf("queue payment: %w", err)
	}
	if transition.Changed() {
		if err := queueReport(ctx, p.messages, claim, reporting.ActionForTransition(transition.From, transition.To)); err != nil {
			return err
		}
	}
	if p.pregnancy.CurrentCycleIsSecondToLastCycleWithPregnancyVouchers(current.EntitlementCycle()) {
		if err := queueEmail(ctx, p.messages, claim, notification.EmailReportABirthReminder, notification.ClaimantPersonalisation(claim)); err != nil {
			return err
		}
	}
	return nil
}

func (p *DetermineEntitlement) handleIneligible(
	ctx context.Context,
	claim *claimmodels.Claim,
	previous, current *paymentmodels.PaymentCycle,
	decision eligibility.Decision,
) error {
	transition, err := p.payments.HandleIneligibleDecision(ctx, claim, previous, current, decision)
	if err != nil {
		return err
	}
	if transition.NoLongerEligible {
		if err := queueEmail(ctx, p.messages, claim, notification.EmailClaimNoLongerEligible, notification.ClaimantPersonalisation(claim)); err != nil {
			return err
		}
	}
	if transition.Changed() {
		return queueReport(ctx, p.messages, claim, reporting.ActionForTransition(transition.From, transition.To))
	}
	return nil
}

// findCycle loads a cycle; the nil id means there is none.
func (p *DetermineEntitlement) findCycle(ctx context.Context, id uuid.UUID) (*paymentmodels.PaymentCycle, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	cycle, err := p.cycles.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load payment cycle %s: %w", id, err)
	}
	return cycle, nil
}
