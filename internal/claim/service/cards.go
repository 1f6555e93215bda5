package service

import (
	"context"
	"fmt"
	"log/slog"

	"claimflow/internal/claim/models"
	messagemodels "claimflow/internal/message/models"
	"claimflow/internal/notification"
	"claimflow/pkg/requestcontext"
)

// SweepResult counts claims handled by one card sweep.
type SweepResult struct {
	Updated int
	Failed  int
}

// HandlePendingCancellations schedules cancellation for cards that have been
// pending cancellation for the configured number of payment cycles.
func (s *Service) HandlePendingCancellations(ctx context.Context) (SweepResult, error) {
	now := requestcontext.Now(ctx)
	cutoff := now.AddDate(0, 0, -s.pendingExpiryCycles*s.cycleDurationDays)
	claims, err := s.claims.FindByCardStatusChangedBefore(ctx, models.CardStatusPendingCancellation, cutoff)
	if err != nil {
		return SweepResult{}, fmt.Errorf("find cards pending cancellation: %w", err)
	}
	return s.sweep(ctx, claims, models.CardStatusScheduledForCancellation, nil)
}

// HandleScheduledCancellations tells each claimant their card is about to be
// cancelled and marks the card cancelled.
func (s *Service) HandleScheduledCancellations(ctx context.Context) (SweepResult, error) {
	claims, err := s.claims.FindByCardStatus(ctx, models.CardStatusScheduledForCancellation)
	if err != nil {
		return SweepResult{}, fmt.Errorf("find cards scheduled for cancellation: %w", err)
	}
	return s.sweep(ctx, claims, models.CardStatusCancelled, func(ctx context.Context, claim *models.Claim) error {
		_, err := s.messages.Enqueue(ctx, messagemodels.MessageTypeSendEmail, messagemodels.SendEmailPayload{
			ClaimID:              claim.ID,
			EmailType:            notification.EmailCardIsAboutToBeCancelled,
			EmailAddress:         claim.Claimant.EmailAddress,
			EmailPersonalisation: notification.ClaimantPersonalisation(claim),
		})
		if err != nil {
			return fmt.Errorf("queue card cancellation email: %w", err)
		}
		return nil
	})
}

// sweep moves each claim's card to status in its own transaction, running
// before first when it is set. Failures are logged and counted.
func (s *Service) sweep(ctx context.Context, claims []*models.Claim, to models.CardStatus, before func(context.Context, *models.Claim) error) (SweepResult, error) {
	var result SweepResult
	for _, claim := range claims {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		from := claim.CardStatus
		err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			if before != nil {
				if err := before(txCtx, claim); err != nil {
					return err
				}
			}
			if err := claim.UpdateCardStatus(to, requestcontext.Now(txCtx)); err != nil {
				return err
			}
			return s.claims.Update(txCtx, claim)
		})
		if err != nil {
			result.Failed++
			s.logger.ErrorContext(ctx, "failed to update card status",
				slog.String("claim_id", claim.ID.String()),
				slog.String("from", string(from)),
				slog.String("to", string(to)),
				slog.Any("error", err),
			)
			continue
		}
		result.Updated++
		s.metrics.IncrementCardStatusChange(string(to))
	}
	if len(claims) > 0 {
		s.logger.InfoContext(ctx, "card status sweep finished",
			slog.String("card_status", string(to)),
			slog.Int("updated", result.Updated),
			slog.Int("failed", result.Failed),
		)
	}
	return result, nil
}
