package entitlement

import "time"

// Calculator computes the voucher entitlement for a single entitlement date.
type Calculator struct {
	cfg       Config
	pregnancy *PregnancyCalculator
}

func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg, pregnancy: NewPregnancyCalculator(cfg)}
}

// CalculateVoucherEntitlement evaluates pregnancy and each child's age band
// on entitlementDate. A child is counted in at most one band.
func (c *Calculator) CalculateVoucherEntitlement(dueDate *time.Time, childrenDob []time.Time, entitlementDate time.Time) VoucherEntitlement {
	date := dateOf(entitlementDate)
	underOne, oneToFour := countChildren(childrenDob, date)

	pregnancyVouchers := 0
	if c.pregnancy.IsEntitledToVoucher(dueDate, date) {
		pregnancyVouchers = c.cfg.VouchersPerPregnancy
	}

	return VoucherEntitlement{
		EntitlementDate:                      date,
		VouchersForChildrenUnderOne:          underOne * c.cfg.VouchersPerChildUnderOne,
		VouchersForChildrenBetweenOneAndFour: oneToFour * c.cfg.VouchersPerChildBetweenOneAndFour,
		VouchersForPregnancy:                 pregnancyVouchers,
		SingleVoucherValueInPence:            c.cfg.VoucherValueInPence,
	}
}

// childVouchers is the child-only part of an entitlement for one date.
func (c *Calculator) childVouchers(childrenDob []time.Time, date time.Time) int {
	underOne, oneToFour := countChildren(childrenDob, date)
	return underOne*c.cfg.VouchersPerChildUnderOne + oneToFour*c.cfg.VouchersPerChildBetweenOneAndFour
}

func (c *Calculator) pregnancyVouchers(dueDate *time.Time, date time.Time) int {
	if c.pregnancy.IsEntitledToVoucher(dueDate, date) {
		return c.cfg.VouchersPerPregnancy
	}
	return 0
}

func countChildren(childrenDob []time.Time, date time.Time) (underOne, oneToFour int) {
	for _, dob := range childrenDob {
		switch ageBand(dateOf(dob), date) {
		case bandUnderOne:
			underOne++
		case bandOneToFour:
			oneToFour++
		}
	}
	return underOne, oneToFour
}

type band int

const (
	bandNone band = iota
	bandUnderOne
	bandOneToFour
)

func ageBand(dob, date time.Time) band {
	switch {
	case dob.After(date):
		return bandNone
	case date.Before(dob.AddDate(1, 0, 0)):
		return bandUnderOne
	case date.Before(dob.AddDate(4, 0, 0)):
		return bandOneToFour
	default:
		return bandNone
	}
}
