package processor

import (
	"context"
	"errors"
	"fmt"

	"claimflow/internal/audit"
	claimmodels "claimflow/internal/claim/models"
	"claimflow/internal/message/models"
	"claimflow/internal/reporting"
	"claimflow/pkg/requestcontext"
)

// CompleteNewCard activates a claim once its card exists: it opens the first
// payment cycle and queues the first payment.
type CompleteNewCard struct {
	claims   ClaimStore
	payments PaymentService
	messages MessageQueue
	auditor  *audit.Publisher
}

func NewCompleteNewCard(claims ClaimStore, payments PaymentService, messages MessageQueue, auditor *audit.Publisher) (*CompleteNewCard, error) {
	if claims == nil || payments == nil || messages == nil || auditor == nil {
		return nil, errors.New("complete new card: claim store, payment service, message queue and auditor are required")
	}
	return &CompleteNewCard{claims: claims, payments: payments, messages: messages, auditor: auditor}, nil
}

func (p *CompleteNewCard) MessageType() models.MessageType {
	return models.MessageTypeCompleteNewCard
}

func (p *CompleteNewCard) Process(ctx context.Context, msg *models.Message) (models.MessageStatus, error) {
	payload, err := models.DecodePayload[models.CompleteNewCardPayload](msg)
	if err != nil {
		return "", err
	}
	claim, err := p.claims.FindByID(ctx, payload.ClaimID)
	if err != nil {
		return "", fmt.Errorf("load claim %s: %w", payload.ClaimID, err)
	}

	cycle, err := p.payments.CreatePaymentCycleForEligibleClaim(ctx, claim,
		requestcontext.Today(ctx), payload.VoucherEntitlement, payload.DatesOfBirthOfChildren)
	if err != nil {
		return "", err
	}

	now := requestcontext.Now(ctx)
	from := claim.ClaimStatus
	if err := claim.UpdateClaimStatus(claimmodels.ClaimStatusActive, now); err != nil {
		return "", err
	}
	if err := claim.UpdateCardStatus(claimmodels.CardStatusActive, now); err != nil {
		return "", err
	}
	if err := p.claims.Update(ctx, claim); err != nil {
		return "", fmt.Errorf("activate claim %s: %w", claim.ID, err)
	}
	p.auditor.AuditNewCard(ctx, claim.ID, payload.CardAccountID)

	_, err = p.messages.Enqueue(ctx, models.MessageTypeMakeFirstPayment, models.MakeFirstPaymentPayload{
		ClaimID:        claim.ID,
		PaymentCycleID: cycle.ID,
		CardAccountID:  payload.CardAccountID,
	})
	if err != nil {
		return "", fmt.Errorf("queue first payment: %w", err)
	}
	if err := queueReport(ctx, p.messages, claim, reporting.ActionForTransition(from, claim.ClaimStatus)); err != nil {
		return "", err
	}
	return models.MessageStatusCompleted, nil
}
