package models

import (
	"time"

	"github.com/google/uuid"

	"claimflow/internal/entitlement"
	"claimflow/internal/notification"
	"claimflow/internal/reporting"
)

type RequestNewCardPayload struct {
	ClaimID                uuid.UUID                                  `json:"claimId"`
	VoucherEntitlement     entitlement.PaymentCycleVoucherEntitlement `json:"voucherEntitlement"`
	DatesOfBirthOfChildren []time.Time                                `json:"datesOfBirthOfChildren"`
}

type CompleteNewCardPayload struct {
	ClaimID                uuid.UUID                                  `json:"claimId"`
	CardAccountID          string                                     `json:"cardAccountId"`
	VoucherEntitlement     entitlement.PaymentCycleVoucherEntitlement `json:"voucherEntitlement"`
	DatesOfBirthOfChildren []time.Time                                `json:"datesOfBirthOfChildren"`
}

type MakeFirstPaymentPayload struct {
	ClaimID        uuid.UUID `json:"claimId"`
	PaymentCycleID uuid.UUID `json:"paymentCycleId"`
	CardAccountID  string    `json:"cardAccountId"`
}

type DetermineEntitlementPayload struct {
	ClaimID                uuid.UUID `json:"claimId"`
	PreviousPaymentCycleID uuid.UUID `json:"previousPaymentCycleId"`
	CurrentPaymentCycleID  uuid.UUID `json:"currentPaymentCycleId"`
}

type MakePaymentPayload struct {
	ClaimID          uuid.UUID `json:"claimId"`
	PaymentCycleID   uuid.UUID `json:"paymentCycleId"`
	CardAccountID    string    `json:"cardAccountId"`
	PaymentRestarted bool      `json:"paymentRestarted"`
}

type SendEmailPayload struct {
	ClaimID              uuid.UUID              `json:"claimId"`
	EmailType            notification.EmailType `json:"emailType"`
	EmailAddress         string                 `json:"emailAddress"`
	EmailPersonalisation map[string]any         `json:"emailPersonalisation"`
}

type ReportClaimPayload struct {
	ClaimID               uuid.UUID             `json:"claimId"`
	ClaimAction           reporting.ClaimAction `json:"claimAction"`
	UpdatedClaimantFields []string              `json:"updatedClaimantFields,omitempty"`
	Timestamp             time.Time             `json:"timestamp"`
}
