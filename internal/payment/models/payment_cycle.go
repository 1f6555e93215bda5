package models

import (
	"time"

	"github.com/google/uuid"

	claimmodels "claimflow/internal/claim/models"
	"claimflow/internal/entitlement"
)

// PaymentCycleStatus tracks what happened to a cycle's payment.
type PaymentCycleStatus string

const (
	PaymentCycleStatusNew                 PaymentCycleStatus = "NEW"
	PaymentCycleStatusFullPaymentMade     PaymentCycleStatus = "FULL_PAYMENT_MADE"
	PaymentCycleStatusPartialPaymentMade  PaymentCycleStatus = "PARTIAL_PAYMENT_MADE"
	PaymentCycleStatusNoPaymentMade       PaymentCycleStatus = "NO_PAYMENT_MADE"
	PaymentCycleStatusIneligible          PaymentCycleStatus = "INELIGIBLE"
	PaymentCycleStatusBalanceTooHighError PaymentCycleStatus = "ERROR_PENDING_EXPIRY_CARD_BALANCE_TOO_HIGH"
)

// PaymentCycle is one fixed-length payment period of a claim.
type PaymentCycle struct {
	ID                            uuid.UUID                                   `json:"id"`
	ClaimID                       uuid.UUID                                   `json:"claimId"`
	CycleStartDate                time.Time                                   `json:"cycleStartDate"`
	CycleEndDate                  time.Time                                   `json:"cycleEndDate"`
	PaymentCycleStatus            PaymentCycleStatus                          `json:"paymentCycleStatus"`
	EligibilityStatus             claimmodels.EligibilityStatus               `json:"eligibilityStatus,omitempty"`
	VoucherEntitlement            *entitlement.PaymentCycleVoucherEntitlement `json:"voucherEntitlement,omitempty"`
	ChildrenDob                   []time.Time                                 `json:"childrenDob"`
	ExpectedDeliveryDate          *time.Time                                  `json:"expectedDeliveryDate,omitempty"`
	TotalVouchers                 int                                         `json:"totalVouchers"`
	TotalEntitlementAmountInPence int                                         `json:"totalEntitlementAmountInPence"`
	CardBalanceInPence            *int                                        `json:"cardBalanceInPence,omitempty"`
	CardBalanceTimestamp          *time.Time                                  `json:"cardBalanceTimestamp,omitempty"`
	Version                       int                                         `json:"version"`
	CreatedAt                     time.Time                                   `json:"createdAt"`
	UpdatedAt                     time.Time                                   `json:"updatedAt"`
}

// ApplyEntitlement stores an entitlement and its derived totals.
func (p *PaymentCycle) ApplyEntitlement(e entitlement.PaymentCycleVoucherEntitlement) {
	p.VoucherEntitlement = &e
	p.TotalVouchers = e.TotalVoucherEntitlement()
	p.TotalEntitlementAmountInPence = e.TotalVoucherValueInPence()
}

// ClearEntitlement removes any entitlement, used when a decision is ineligible.
func (p *PaymentCycle) ClearEntitlement() {
	p.VoucherEntitlement = nil
	p.TotalVouchers = 0
	p.TotalEntitlementAmountInPence = 0
}

// RecordCardBalance stores the balance read before paying.
func (p *PaymentCycle) RecordCardBalance(balanceInPence int, at time.Time) {
	p.CardBalanceInPence = &balanceInPence
	p.CardBalanceTimestamp = &at
}

// EntitlementCycle is the cycle window used by the pregnancy rules.
func (p *PaymentCycle) EntitlementCycle() entitlement.Cycle {
	return entitlement.Cycle{
		StartDate:            p.CycleStartDate,
		EndDate:              p.CycleEndDate,
		ExpectedDeliveryDate: p.ExpectedDeliveryDate,
	}
}

// AsPreviousCycle is the carry-forward context for the next cycle's entitlement.
func (p *PaymentCycle) AsPreviousCycle() *entitlement.PreviousCycle {
	if p == nil {
		return nil
	}
	return &entitlement.PreviousCycle{
		ChildrenDob:          p.ChildrenDob,
		ExpectedDeliveryDate: p.ExpectedDeliveryDate,
		Entitlement:          p.VoucherEntitlement,
	}
}
