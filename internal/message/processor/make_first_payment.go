package processor

import (
	"context"
	"errors"
	"fmt"

	"claimflow/internal/message/models"
	"claimflow/internal/notification"
	paymentmodels "claimflow/internal/payment/models"
)

// MakeFirstPayment pays the first cycle onto a brand new card and sends the
// new card email.
type MakeFirstPayment struct {
	claims   ClaimStore
	cycles   CycleStore
	payments PaymentService
	messages MessageQueue
}

func NewMakeFirstPayment(claims ClaimStore, cycles CycleStore, payments PaymentService, messages MessageQueue) (*MakeFirstPayment, error) {
	if claims == nil || cycles == nil || payments == nil || messages == nil {
		return nil, errors.New("make first payment: all collaborators are required")
	}
	return &MakeFirstPayment{claims: claims, cycles: cycles, payments: payments, messages: messages}, nil
}

func (p *MakeFirstPayment) MessageType() models.MessageType {
	return models.MessageTypeMakeFirstPayment
}

func (p *MakeFirstPayment) Process(ctx context.Context, msg *models.Message) (models.MessageStatus, error) {
	payload, err := models.DecodePayload[models.MakeFirstPaymentPayload](msg)
	if err != nil {
		return "", err
	}
	claim, err := p.claims.FindByID(ctx, payload.ClaimID)
	if err != nil {
		return "", fmt.Errorf("load claim %s: %w", payload.ClaimID, err)
	}
	cycle, err := p.cycles.FindByID(ctx, payload.PaymentCycleID)
	if err != nil {
		return "", fmt.Errorf("load payment cycle %s: %w", payload.PaymentCycleID, err)
	}
	if cycle.PaymentCycleStatus != paymentmodels.PaymentCycleStatusNew {
		return models.MessageStatusCompleted, nil
	}

	result, err := p.payments.MakeFirstPayment(ctx, claim, cycle)
	if err != nil {
		return "", err
	}

	personalisation := notification.PaymentPersonalisation(claim, cycle, result.AmountInPence, nextPaymentDate(cycle))
	if err := queueEmail(ctx, p.messages, claim, notification.EmailNewCard, personalisation); err != nil {
		return "", err
	}
	return models.MessageStatusCompleted, nil
}
