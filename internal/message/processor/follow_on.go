package processor

import (
	"context"
	"fmt"
	"time"

	claimmodels "claimflow/internal/claim/models"
	"claimflow/internal/entitlement"
	"claimflow/internal/message/models"
	"claimflow/internal/notification"
	paymentmodels "claimflow/internal/payment/models"
	"claimflow/internal/reporting"
	"claimflow/pkg/requestcontext"
)

func queueEmail(ctx context.Context, queue MessageQueue, claim *claimmodels.Claim, emailType notification.EmailType, personalisation map[string]any) error {
	_, err := queue.Enqueue(ctx, models.MessageTypeSendEmail, models.SendEmailPayload{
		ClaimID:              claim.ID,
		EmailType:            emailType,
		EmailAddress:         claim.Claimant.EmailAddress,
		EmailPersonalisation: personalisation,
	})
	if err != nil {
		return fmt.Errorf("queue %s email for claim %s: %w", emailType, claim.ID, err)
	}
	return nil
}

func queueReport(ctx context.Context, queue MessageQueue, claim *claimmodels.Claim, action reporting.ClaimAction) error {
	_, err := queue.Enqueue(ctx, models.MessageTypeReportClaim, models.ReportClaimPayload{
		ClaimID:     claim.ID,
		ClaimAction: action,
		Timestamp:   requestcontext.Now(ctx),
	})
	if err != nil {
		return fmt.Errorf("queue %s report for claim %s: %w", action, claim.ID, err)
	}
	return nil
}

// queueChildBirthdayEmails tells the claimant about children moving out of a
// voucher band during the next cycle.
func queueChildBirthdayEmails(
	ctx context.Context,
	queue MessageQueue,
	calculator *entitlement.CycleCalculator,
	claim *claimmodels.Claim,
	cycle *paymentmodels.PaymentCycle,
) error {
	summary := calculator.NextPaymentCycleSummary(cycle.CycleStartDate, cycle.ChildrenDob)
	if summary.HasChildrenTurningOne() {
		p := notification.ClaimantPersonalisation(claim)
		p[notification.KeyChildrenTurningOne] = summary.ChildrenTurningOne
		if err := queueEmail(ctx, queue, claim, notification.EmailChildTurnsOne, p); err != nil {
			return err
		}
	}
	if summary.HasChildrenTurningFour() {
		p := notification.ClaimantPersonalisation(claim)
		p[notification.KeyChildrenTurningFour] = summary.ChildrenTurningFour
		if err := queueEmail(ctx, queue, claim, notification.EmailChildTurnsFour, p); err != nil {
			return err
		}
	}
	return nil
}

func nextPaymentDate(cycle *paymentmodels.PaymentCycle) time.Time {
	return cycle.CycleEndDate.AddDate(0, 0, 1)
}
