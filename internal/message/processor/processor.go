// Package processor holds one processor per message type. Each processor
// loads what its message refers to, does the work, and queues whatever has
// to happen next. Processors run inside the dispatcher's transaction, so
// their store writes and queued messages commit or roll back together.
package processor

import (
	"context"
	"time"

	"github.com/google/uuid"

	claimmodels "claimflow/internal/claim/models"
	"claimflow/internal/eligibility"
	"claimflow/internal/entitlement"
	"claimflow/internal/message/models"
	"claimflow/internal/notification"
	paymentmodels "claimflow/internal/payment/models"
	paymentservice "claimflow/internal/payment/service"
	"claimflow/internal/reporting"
)

type ClaimStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*claimmodels.Claim, error)
	Update(ctx context.Context, claim *claimmodels.Claim) error
}

type CycleStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*paymentmodels.PaymentCycle, error)
}

type MessageQueue interface {
	Enqueue(ctx context.Context, t models.MessageType, payload any) (uuid.UUID, error)
}

// CardClient issues new cards.
type CardClient interface {
	RequestNewCard(ctx context.Context, req paymentmodels.CardRequest) (*paymentmodels.CardResponse, error)
}

// EligibilityService re-evaluates a claimant for a payment cycle.
type EligibilityService interface {
	EvaluateClaimantForPaymentCycle(ctx context.Context, claimant claimmodels.Claimant, cycleStart time.Time, previous *entitlement.PreviousCycle) (*eligibility.Decision, error)
}

// PaymentService creates, pays and updates payment cycles.
type PaymentService interface {
	CreatePaymentCycleForEligibleClaim(ctx context.Context, claim *claimmodels.Claim, start time.Time, e entitlement.PaymentCycleVoucherEntitlement, childrenDob []time.Time) (*paymentmodels.PaymentCycle, error)
	UpdatePaymentCycle(ctx context.Context, cycle *paymentmodels.PaymentCycle, decision eligibility.Decision) error
	MakeFirstPayment(ctx context.Context, claim *claimmodels.Claim, cycle *paymentmodels.PaymentCycle) (*paymentservice.PaymentResult, error)
	MakePayment(ctx context.Context, claim *claimmodels.Claim, cycle *paymentmodels.PaymentCycle) (*paymentservice.PaymentResult, error)
	HandleEligibleDecision(ctx context.Context, claim *claimmodels.Claim) (paymentservice.Transition, error)
	HandleIneligibleDecision(ctx context.Context, claim *claimmodels.Claim, previous, current *paymentmodels.PaymentCycle, decision eligibility.Decision) (paymentservice.Transition, error)
}

var _ PaymentService = (*paymentservice.Service)(nil)

// EmailSender delivers emails.
type EmailSender interface {
	SendEmail(ctx context.Context, req notification.SendRequest) error
}

// Reporter publishes claim analytics.
type Reporter interface {
	ReportClaim(ctx context.Context, claim *claimmodels.Claim, action reporting.ClaimAction, updatedFields []string, timestamp time.Time) error
}
