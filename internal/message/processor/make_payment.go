package processor

import (
	"context"
	"errors"
	"fmt"

	"claimflow/internal/entitlement"
	"claimflow/internal/message/models"
	"claimflow/internal/notification"
	paymentmodels "claimflow/internal/payment/models"
)

// MakePayment pays a rolled over cycle and tells the claimant what they got.
type MakePayment struct {
	claims     ClaimStore
	cycles     CycleStore
	payments   PaymentService
	messages   MessageQueue
	calculator *entitlement.CycleCalculator
}

func NewMakePayment(claims ClaimStore, cycles CycleStore, payments PaymentService, messages MessageQueue, calculator *entitlement.CycleCalculator) (*MakePayment, error) {
	if claims == nil || cycles == nil || payments == nil || messages == nil || calculator == nil {
		return nil, errors.New("make payment: all collaborators are required")
	}
	return &MakePayment{claims: claims, cycles: cycles, payments: payments, messages: messages, calculator: calculator}, nil
}

func (p *MakePayment) MessageType() models.MessageType {
	return models.MessageTypeMakePayment
}

func (p *MakePayment) Process(ctx context.Context, msg *models.Message) (models.MessageStatus, error) {
	payload, err := models.DecodePayload[models.MakePaymentPayload](msg)
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

	result, err := p.payments.MakePayment(ctx, claim, cycle)
	if err != nil {
		return "", err
	}

	if result.Status != paymentmodels.PaymentCycleStatusNoPaymentMade {
		emailType := paymentEmailType(cycle, payload.PaymentRestarted)
		personalisation := notification.PaymentPersonalisation(claim, cycle, result.AmountInPence, nextPaymentDate(cycle))
		if err := queueEmail(ctx, p.messages, claim, emailType, personalisation); err != nil {
			return "", err
		}
	}
	if err := queueChildBirthdayEmails(ctx, p.messages, p.calculator, claim, cycle); err != nil {
		return "", err
	}
	return models.MessageStatusCompleted, nil
}

func paymentEmailType(cycle *paymentmodels.PaymentCycle, restarted bool) notification.EmailType {
	switch {
	case cycle.VoucherEntitlement != nil && cycle.VoucherEntitlement.BackdatedVouchers() > 0:
		return notification.EmailNewChildFromPregnancy
	case restarted:
		return notification.EmailRestartedPayment
	default:
		return notification.EmailRegularPayment
	}
}
