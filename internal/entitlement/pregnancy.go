package entitlement

import "time"

// PregnancyCalculator decides whether a due date still entitles the claimant
// to pregnancy vouchers.
type PregnancyCalculator struct {
	gracePeriodWeeks  int
	cycleDurationDays int
}

func NewPregnancyCalculator(cfg Config) *PregnancyCalculator {
	return &PregnancyCalculator{
		gracePeriodWeeks:  cfg.PregnancyGracePeriodWeeks,
		cycleDurationDays: cfg.PaymentCycleDurationDays,
	}
}

// IsEntitledToVoucher is true when entitlementDate is on or before the due
// date plus the grace period.
func (p *PregnancyCalculator) IsEntitledToVoucher(dueDate *time.Time, entitlementDate time.Time) bool {
	if dueDate == nil {
		return false
	}
	endOfGrace := addDays(dateOf(*dueDate), 7*p.gracePeriodWeeks)
	return !endOfGrace.Before(dateOf(entitlementDate))
}

// ClaimantIsPregnantInCycle checks the cycle start date.
func (p *PregnancyCalculator) ClaimantIsPregnantInCycle(c Cycle) bool {
	return p.IsEntitledToVoucher(c.ExpectedDeliveryDate, c.StartDate)
}

// ClaimantIsPregnantAfterCycle checks the day after the cycle ends.
func (p *PregnancyCalculator) ClaimantIsPregnantAfterCycle(c Cycle) bool {
	return p.IsEntitledToVoucher(c.ExpectedDeliveryDate, addDays(dateOf(c.EndDate), 1))
}

// CurrentCycleIsSecondToLastCycleWithPregnancyVouchers is true when this
// cycle and the next one pay pregnancy vouchers but the one after does not.
func (p *PregnancyCalculator) CurrentCycleIsSecondToLastCycleWithPregnancyVouchers(c Cycle) bool {
	start := dateOf(c.StartDate)
	next := addDays(start, p.cycleDurationDays)
	afterNext := addDays(start, 2*p.cycleDurationDays)
	return p.IsEntitledToVoucher(c.ExpectedDeliveryDate, start) &&
		p.IsEntitledToVoucher(c.ExpectedDeliveryDate, next) &&
		!p.IsEntitledToVoucher(c.ExpectedDeliveryDate, afterNext)
}
