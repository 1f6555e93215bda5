package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	claimmodels "claimflow/internal/claim/models"
	paymentmodels "claimflow/internal/payment/models"
	"claimflow/pkg/requestcontext"
)

// Publisher captures structured audit events about claims. It is
// append-only; a failing sink is logged and never fails the caller.
type Publisher struct {
	store  Store
	logger *slog.Logger
}

func NewPublisher(store Store, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{store: store, logger: logger}
}

func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "failed to append audit event",
			slog.String("event_type", string(event.Type)),
			slog.String("claim_id", event.ClaimID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (p *Publisher) AuditNewClaim(ctx context.Context, claim *claimmodels.Claim) {
	if claim == nil {
		p.logger.WarnContext(ctx, "unable to audit nil claim")
		return
	}
	p.Emit(ctx, Event{
		Type:    EventNewClaim,
		ClaimID: claim.ID,
		Fields: map[string]any{
			"claim_status":       string(claim.ClaimStatus),
			"eligibility_status": string(claim.EligibilityStatus),
		},
	})
}

func (p *Publisher) AuditNewCard(ctx context.Context, claimID uuid.UUID, cardAccountID string) {
	p.Emit(ctx, Event{
		Type:    EventNewCard,
		ClaimID: claimID,
		Fields:  map[string]any{"card_account_id": cardAccountID},
	})
}

func (p *Publisher) AuditMakePayment(ctx context.Context, cycle *paymentmodels.PaymentCycle, payment *paymentmodels.Payment) {
	p.Emit(ctx, Event{
		Type:    EventMakePayment,
		ClaimID: cycle.ClaimID,
		Fields: map[string]any{
			"entitlement_amount_in_pence": cycle.TotalEntitlementAmountInPence,
			"payment_amount_in_pence":     payment.PaymentAmountInPence,
			"payment_id":                  payment.ID.String(),
			"reference":                   payment.ResponseReference,
		},
	})
}

func (p *Publisher) AuditBalanceTooHighForPayment(ctx context.Context, claimID uuid.UUID, entitlementInPence, balanceInPence int) {
	p.Emit(ctx, Event{
		Type:    EventBalanceTooHighForPayment,
		ClaimID: claimID,
		Fields: map[string]any{
			"entitlement_amount_in_pence": entitlementInPence,
			"balance_on_card":             balanceInPence,
		},
	})
}
