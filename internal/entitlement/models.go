package entitlement

import "time"

// VoucherEntitlement is the voucher breakdown for one entitlement date.
// BackdatedVouchers is only ever non-zero on the first date of a cycle.
type VoucherEntitlement struct {
	EntitlementDate                      time.Time `json:"entitlementDate"`
	VouchersForChildrenUnderOne          int       `json:"vouchersForChildrenUnderOne"`
	VouchersForChildrenBetweenOneAndFour int       `json:"vouchersForChildrenBetweenOneAndFour"`
	VouchersForPregnancy                 int       `json:"vouchersForPregnancy"`
	BackdatedVouchers                    int       `json:"backdatedVouchers"`
	SingleVoucherValueInPence            int       `json:"singleVoucherValueInPence"`
}

func (v VoucherEntitlement) TotalVoucherEntitlement() int {
	return v.VouchersForChildrenUnderOne + v.VouchersForChildrenBetweenOneAndFour + v.VouchersForPregnancy + v.BackdatedVouchers
}

func (v VoucherEntitlement) TotalVoucherValueInPence() int {
	return v.TotalVoucherEntitlement() * v.SingleVoucherValueInPence
}

// PaymentCycleVoucherEntitlement is the ordered set of entitlement dates for
// one payment cycle. Totals are always derived from the dates.
type PaymentCycleVoucherEntitlement struct {
	VoucherEntitlements []VoucherEntitlement `json:"voucherEntitlements"`
}

func (p PaymentCycleVoucherEntitlement) TotalVoucherEntitlement() int {
	return p.sum(VoucherEntitlement.TotalVoucherEntitlement)
}

func (p PaymentCycleVoucherEntitlement) TotalVoucherValueInPence() int {
	return p.sum(VoucherEntitlement.TotalVoucherValueInPence)
}

func (p PaymentCycleVoucherEntitlement) VouchersForPregnancy() int {
	return p.sum(func(v VoucherEntitlement) int { return v.VouchersForPregnancy })
}

func (p PaymentCycleVoucherEntitlement) VouchersForChildrenUnderOne() int {
	return p.sum(func(v VoucherEntitlement) int { return v.VouchersForChildrenUnderOne })
}

func (p PaymentCycleVoucherEntitlement) VouchersForChildrenBetweenOneAndFour() int {
	return p.sum(func(v VoucherEntitlement) int { return v.VouchersForChildrenBetweenOneAndFour })
}

func (p PaymentCycleVoucherEntitlement) BackdatedVouchers() int {
	return p.sum(func(v VoucherEntitlement) int { return v.BackdatedVouchers })
}

// SingleVoucherValueInPence returns the voucher value used for the cycle, or
// zero for an empty entitlement.
func (p PaymentCycleVoucherEntitlement) SingleVoucherValueInPence() int {
	if len(p.VoucherEntitlements) == 0 {
		return 0
	}
	return p.VoucherEntitlements[0].SingleVoucherValueInPence
}

// LastEntitlementDate returns the final entitlement date of the cycle.
func (p PaymentCycleVoucherEntitlement) LastEntitlementDate() (time.Time, bool) {
	if len(p.VoucherEntitlements) == 0 {
		return time.Time{}, false
	}
	return p.VoucherEntitlements[len(p.VoucherEntitlements)-1].EntitlementDate, true
}

func (p PaymentCycleVoucherEntitlement) sum(f func(VoucherEntitlement) int) int {
	total := 0
	for _, v := range p.VoucherEntitlements {
		total += f(v)
	}
	return total
}

// Cycle is the date window of a payment cycle as seen by the pregnancy rules.
type Cycle struct {
	StartDate            time.Time
	EndDate              time.Time
	ExpectedDeliveryDate *time.Time
}

// PreviousCycle carries the previous payment cycle's confirmed children, due
// date and entitlement; the cycle calculator uses it to find newly reported
// births.
type PreviousCycle struct {
	ChildrenDob          []time.Time
	ExpectedDeliveryDate *time.Time
	Entitlement          *PaymentCycleVoucherEntitlement
}

// Config holds voucher rules.
type Config struct {
	VouchersPerChildUnderOne           int
	VouchersPerChildBetweenOneAndFour  int
	VouchersPerPregnancy               int
	VoucherValueInPence                int
	EntitlementCalculationDurationDays int
	NumberOfCalculationPeriods         int
	PregnancyGracePeriodWeeks          int
	PregnancyBirthMatchWindowWeeks     int
	PaymentCycleDurationDays           int
}

// DefaultConfig returns the standard scheme rules: four weekly entitlement
// dates per 28 day cycle and 310p vouchers.
func DefaultConfig() Config {
	return Config{
		VouchersPerChildUnderOne:           2,
		VouchersPerChildBetweenOneAndFour:  1,
		VouchersPerPregnancy:               1,
		VoucherValueInPence:                310,
		EntitlementCalculationDurationDays: 7,
		NumberOfCalculationPeriods:         4,
		PregnancyGracePeriodWeeks:          12,
		PregnancyBirthMatchWindowWeeks:     16,
		PaymentCycleDurationDays:           28,
	}
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func addDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}
