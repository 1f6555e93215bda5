package entitlement

import "time"

// CycleCalculator computes a whole payment cycle's entitlement, including
// vouchers backdated for births reported after the fact.
type CycleCalculator struct {
	cfg        Config
	calculator *Calculator
	pregnancy  *PregnancyCalculator
}

func NewCycleCalculator(cfg Config) *CycleCalculator {
	return &CycleCalculator{
		cfg:        cfg,
		calculator: NewCalculator(cfg),
		pregnancy:  NewPregnancyCalculator(cfg),
	}
}

// Pregnancy exposes the pregnancy rules used by this calculator.
func (c *CycleCalculator) Pregnancy() *PregnancyCalculator {
	return c.pregnancy
}

// CycleDurationDays is the configured payment cycle length.
func (c *CycleCalculator) CycleDurationDays() int {
	return c.cfg.PaymentCycleDurationDays
}

// EntitlementDates enumerates the entitlement dates of the cycle starting at cycleStart.
func (c *CycleCalculator) EntitlementDates(cycleStart time.Time) []time.Time {
	start := dateOf(cycleStart)
	dates := make([]time.Time, 0, c.cfg.NumberOfCalculationPeriods)
	for i := 0; i < c.cfg.NumberOfCalculationPeriods; i++ {
		dates = append(dates, addDays(start, i*c.cfg.EntitlementCalculationDurationDays))
	}
	return dates
}

// CycleEndDate is the last day of the cycle starting at cycleStart.
func (c *CycleCalculator) CycleEndDate(cycleStart time.Time) time.Time {
	return addDays(dateOf(cycleStart), c.cfg.PaymentCycleDurationDays-1)
}

// CalculateEntitlement computes the cycle entitlement without backdating,
// as used for a brand new claim.
func (c *CycleCalculator) CalculateEntitlement(dueDate *time.Time, childrenDob []time.Time, cycleStart time.Time) PaymentCycleVoucherEntitlement {
	return c.CalculateEntitlementWithBackdating(dueDate, childrenDob, cycleStart, nil)
}

// CalculateEntitlementWithBackdating computes the cycle entitlement and, when
// previous shows the claimant was being paid for a pregnancy, backdates
// vouchers for children born since then. The result depends only on its
// inputs, so recalculating the same cycle never backdates twice.
func (c *CycleCalculator) CalculateEntitlementWithBackdating(
	dueDate *time.Time,
	childrenDob []time.Time,
	cycleStart time.Time,
	previous *PreviousCycle,
) PaymentCycleVoucherEntitlement {
	relevantDueDate := c.RelevantExpectedDeliveryDate(dueDate, childrenDob)

	dates := c.EntitlementDates(cycleStart)
	entitlements := make([]VoucherEntitlement, 0, len(dates))
	for _, date := range dates {
		entitlements = append(entitlements, c.calculator.CalculateVoucherEntitlement(relevantDueDate, childrenDob, date))
	}

	if len(entitlements) > 0 {
		entitlements[0].BackdatedVouchers = c.backdatedVouchers(childrenDob, cycleStart, previous)
	}
	return PaymentCycleVoucherEntitlement{VoucherEntitlements: entitlements}
}

// RelevantExpectedDeliveryDate drops the due date once a confirmed child has
// been born close enough to it to be the baby the pregnancy vouchers were for.
func (c *CycleCalculator) RelevantExpectedDeliveryDate(dueDate *time.Time, childrenDob []time.Time) *time.Time {
	if dueDate == nil {
		return nil
	}
	due := dateOf(*dueDate)
	windowStart := addDays(due, -7*c.cfg.PregnancyBirthMatchWindowWeeks)
	windowEnd := addDays(due, 7*c.cfg.PregnancyGracePeriodWeeks)
	for _, dob := range childrenDob {
		d := dateOf(dob)
		if !d.Before(windowStart) && !d.After(windowEnd) {
			return nil
		}
	}
	return &due
}

func (c *CycleCalculator) backdatedVouchers(childrenDob []time.Time, cycleStart time.Time, previous *PreviousCycle) int {
	if previous == nil || previous.Entitlement == nil || previous.Entitlement.VouchersForPregnancy() == 0 {
		return 0
	}

	start := dateOf(cycleStart)
	newChildren := newChildrenSince(childrenDob, previous.ChildrenDob, start)
	if len(newChildren) == 0 {
		return 0
	}
	earliest := newChildren[0]
	for _, dob := range newChildren[1:] {
		if dob.Before(earliest) {
			earliest = dob
		}
	}

	owed := 0
	for date := addDays(start, -c.cfg.EntitlementCalculationDurationDays); !date.Before(earliest); date = addDays(date, -c.cfg.EntitlementCalculationDurationDays) {
		owed += c.calculator.childVouchers(newChildren, date)
		owed -= c.calculator.pregnancyVouchers(previous.ExpectedDeliveryDate, date)
	}
	if owed < 0 {
		return 0
	}
	return owed
}

// newChildrenSince returns dates of birth in current that were not known in
// previous and fall before cycleStart.
func newChildrenSince(current, previous []time.Time, cycleStart time.Time) []time.Time {
	known := make(map[time.Time]int, len(previous))
	for _, dob := range previous {
		known[dateOf(dob)]++
	}
	var out []time.Time
	for _, dob := range current {
		d := dateOf(dob)
		if known[d] > 0 {
			known[d]--
			continue
		}
		if d.Before(cycleStart) {
			out = append(out, d)
		}
	}
	return out
}

// NextCycleSummary lists children whose birthday moves them out of a voucher
// band during the next payment cycle.
type NextCycleSummary struct {
	ChildrenTurningOne  int
	ChildrenTurningFour int
}

// NextPaymentCycleSummary counts children turning one or four after the
// current cycle's last entitlement date and on or before the next cycle's
// last entitlement date.
func (c *CycleCalculator) NextPaymentCycleSummary(cycleStart time.Time, childrenDob []time.Time) NextCycleSummary {
	dates := c.EntitlementDates(cycleStart)
	if len(dates) == 0 {
		return NextCycleSummary{}
	}
	currentLast := dates[len(dates)-1]
	nextLast := addDays(currentLast, c.cfg.PaymentCycleDurationDays)

	inWindow := func(birthday time.Time) bool {
		return birthday.After(currentLast) && !birthday.After(nextLast)
	}

	var summary NextCycleSummary
	for _, dob := range childrenDob {
		d := dateOf(dob)
		if inWindow(d.AddDate(1, 0, 0)) {
			summary.ChildrenTurningOne++
		}
		if inWindow(d.AddDate(4, 0, 0)) {
			summary.ChildrenTurningFour++
		}
	}
	return summary
}

func (s NextCycleSummary) HasChildrenTurningOne() bool {
	return s.ChildrenTurningOne > 0
}

func (s NextCycleSummary) HasChildrenTurningFour() bool {
	return s.ChildrenTurningFour > 0
}
