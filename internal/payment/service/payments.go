package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	claimmodels "claimflow/internal/claim/models"
	"claimflow/internal/payment/models"
	"claimflow/pkg/platform/sentinel"
	"claimflow/pkg/requestcontext"
)

// PaymentResult describes what was paid for a cycle.
type PaymentResult struct {
	AmountInPence  int
	BalanceInPence int
	Status         models.PaymentCycleStatus
	Payment        *models.Payment
}

// CalculatePaymentAmount applies the card balance ceiling. Nothing is paid
// once the balance reaches the ceiling, and a payment that would take the
// balance over it is reduced to fit.
func CalculatePaymentAmount(entitlementInPence, balanceInPence, maxBalanceInPence int) (int, models.PaymentCycleStatus) {
	switch {
	case balanceInPence >= maxBalanceInPence:
		return 0, models.PaymentCycleStatusNoPaymentMade
	case balanceInPence+entitlementInPence > maxBalanceInPence:
		return maxBalanceInPence - balanceInPence, models.PaymentCycleStatusPartialPaymentMade
	default:
		return entitlementInPence, models.PaymentCycleStatusFullPaymentMade
	}
}

// MakeFirstPayment deposits the whole entitlement onto a newly issued card.
func (s *Service) MakeFirstPayment(ctx context.Context, claim *claimmodels.Claim, cycle *models.PaymentCycle) (*PaymentResult, error) {
	if err := requireUnpaid(cycle); err != nil {
		return nil, err
	}
	amount := cycle.TotalEntitlementAmountInPence
	payment, err := s.deposit(ctx, claim, cycle, amount)
	if err != nil {
		return nil, err
	}
	cycle.RecordCardBalance(0, requestcontext.Now(ctx))
	if err := s.completeCycle(ctx, cycle, models.PaymentCycleStatusFullPaymentMade); err != nil {
		return nil, err
	}
	s.metrics.IncrementPayment(string(models.PaymentCycleStatusFullPaymentMade), amount)
	return &PaymentResult{
		AmountInPence: amount,
		Status:        models.PaymentCycleStatusFullPaymentMade,
		Payment:       payment,
	}, nil
}

// MakePayment pays a cycle's entitlement, limited by the card balance
// ceiling.
func (s *Service) MakePayment(ctx context.Context, claim *claimmodels.Claim, cycle *models.PaymentCycle) (*PaymentResult, error) {
	if err := requireUnpaid(cycle); err != nil {
		return nil, err
	}
	balance, err := s.card.GetBalance(ctx, claim.CardAccountID)
	if err != nil {
		return nil, fmt.Errorf("get balance for card %s: %w", claim.CardAccountID, err)
	}
	cycle.RecordCardBalance(balance.AvailableBalanceInPence, requestcontext.Now(ctx))

	entitlementInPence := cycle.TotalEntitlementAmountInPence
	amount, status := CalculatePaymentAmount(entitlementInPence, balance.AvailableBalanceInPence, s.maxCardBalanceInPence)
	result := &PaymentResult{
		AmountInPence:  amount,
		BalanceInPence: balance.AvailableBalanceInPence,
		Status:         status,
	}

	if amount == 0 {
		s.logger.InfoContext(ctx, "card balance too high for payment",
			slog.String("claim_id", claim.ID.String()),
			slog.String("payment_cycle_id", cycle.ID.String()),
			slog.Int("balance_in_pence", balance.AvailableBalanceInPence),
		)
		s.auditor.AuditBalanceTooHighForPayment(ctx, claim.ID, entitlementInPence, balance.AvailableBalanceInPence)
	} else {
		result.Payment, err = s.deposit(ctx, claim, cycle, amount)
		if err != nil {
			return nil, err
		}
	}
	if err := s.completeCycle(ctx, cycle, status); err != nil {
		return nil, err
	}
	s.metrics.IncrementPayment(string(status), amount)
	return result, nil
}

// deposit pays amount onto the claim's card and records the payment. The
// cycle id is sent as the request reference so the card provider can spot a
// repeated deposit.
func (s *Service) deposit(ctx context.Context, claim *claimmodels.Claim, cycle *models.PaymentCycle, amount int) (*models.Payment, error) {
	reference := cycle.ID.String()
	resp, err := s.card.DepositFunds(ctx, claim.CardAccountID, models.DepositFundsRequest{
		AmountInPence: amount,
		Reference:     reference,
	})
	if err != nil {
		return nil, fmt.Errorf("deposit %d pence to card %s: %w", amount, claim.CardAccountID, err)
	}
	payment := &models.Payment{
		ID:                   uuid.New(),
		ClaimID:              claim.ID,
		PaymentCycleID:       cycle.ID,
		CardAccountID:        claim.CardAccountID,
		PaymentAmountInPence: amount,
		PaymentTimestamp:     requestcontext.Now(ctx),
		RequestReference:     reference,
		ResponseReference:    resp.ReferenceID,
		PaymentStatus:        models.PaymentStatusSuccess,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("record payment for cycle %s: %w", cycle.ID, err)
	}
	s.auditor.AuditMakePayment(ctx, cycle, payment)
	return payment, nil
}

func (s *Service) completeCycle(ctx context.Context, cycle *models.PaymentCycle, status models.PaymentCycleStatus) error {
	cycle.PaymentCycleStatus = status
	cycle.UpdatedAt = requestcontext.Now(ctx)
	if err := s.cycles.Update(ctx, cycle); err != nil {
		return fmt.Errorf("update payment cycle %s: %w", cycle.ID, err)
	}
	return nil
}

func requireUnpaid(cycle *models.PaymentCycle) error {
	if cycle.PaymentCycleStatus != models.PaymentCycleStatusNew {
		return fmt.Errorf("pay cycle %s in status %s: %w", cycle.ID, cycle.PaymentCycleStatus, sentinel.ErrInvalidState)
	}
	return nil
}
