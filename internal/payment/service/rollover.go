package service

import (
	"context"
	"fmt"
	"log/slog"

	messagemodels "claimflow/internal/message/models"
	"claimflow/internal/payment/models"
	"claimflow/pkg/requestcontext"
)

// RolloverResult counts claims handled by one rollover run.
type RolloverResult struct {
	Created int
	Failed  int
}

// CreateNewPaymentCycles starts the next cycle for every live claim whose
// current cycle has ended, and queues the entitlement check for it. Each
// claim is handled in its own transaction; one failure does not stop the
// rest.
func (s *Service) CreateNewPaymentCycles(ctx context.Context) (RolloverResult, error) {
	var result RolloverResult
	due, err := s.cycles.FindCyclesDueForRollover(ctx, requestcontext.Today(ctx))
	if err != nil {
		return result, fmt.Errorf("find payment cycles due for rollover: %w", err)
	}

	for _, previous := range due {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			return s.rollover(txCtx, previous)
		})
		if err != nil {
			result.Failed++
			s.metrics.IncrementRolloverFailure()
			s.logger.ErrorContext(ctx, "failed to create next payment cycle",
				slog.String("claim_id", previous.ClaimID.String()),
				slog.String("previous_payment_cycle_id", previous.ID.String()),
				slog.Any("error", err),
			)
			continue
		}
		result.Created++
	}
	if len(due) > 0 {
		s.logger.InfoContext(ctx, "payment cycle rollover finished",
			slog.Int("created", result.Created),
			slog.Int("failed", result.Failed),
		)
	}
	return result, nil
}

func (s *Service) rollover(ctx context.Context, previous *models.PaymentCycle) error {
	next := s.newCycle(ctx, previous.ClaimID, previous.CycleEndDate.AddDate(0, 0, 1))
	next.ChildrenDob = previous.ChildrenDob
	next.ExpectedDeliveryDate = previous.ExpectedDeliveryDate
	if err := s.cycles.Create(ctx, next); err != nil {
		return fmt.Errorf("create payment cycle: %w", err)
	}
	_, err := s.messages.Enqueue(ctx, messagemodels.MessageTypeDetermineEntitlement, messagemodels.DetermineEntitlementPayload{
		ClaimID:                previous.ClaimID,
		PreviousPaymentCycleID: previous.ID,
		CurrentPaymentCycleID:  next.ID,
	})
	if err != nil {
		return fmt.Errorf("enqueue entitlement check: %w", err)
	}
	s.metrics.IncrementCyclesCreated()
	return nil
}
