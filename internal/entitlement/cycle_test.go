package entitlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type CycleCalculatorSuite struct {
	suite.Suite
	calculator *CycleCalculator
}

func TestCycleCalculatorSuite(t *testing.T) {
	suite.Run(t, new(CycleCalculatorSuite))
}

func (s *CycleCalculatorSuite) SetupTest() {
	s.calculator = NewCycleCalculator(DefaultConfig())
}

// =============================================================================
// Entitlement dates
// =============================================================================

func (s *CycleCalculatorSuite) TestEntitlementDates() {
	start := date(2020, 1, 1)
	s.Equal([]time.Time{
		date(2020, 1, 1),
		date(2020, 1, 8),
		date(2020, 1, 15),
		date(2020, 1, 22),
	}, s.calculator.EntitlementDates(start))
	s.Equal(date(2020, 1, 28), s.calculator.CycleEndDate(start))
}

// =============================================================================
// Cycle entitlement
// =============================================================================

func (s *CycleCalculatorSuite) TestPregnancyOnlyCycle() {
	start := date(2020, 1, 1)
	got := s.calculator.CalculateEntitlement(ptr(start.AddDate(0, 0, 70)), nil, start)

	s.Len(got.VoucherEntitlements, 4)
	s.Equal(4, got.VouchersForPregnancy())
	s.Equal(4, got.TotalVoucherEntitlement())
	s.Equal(1240, got.TotalVoucherValueInPence())
	s.Equal(0, got.BackdatedVouchers())
}

func (s *CycleCalculatorSuite) TestFullHouseholdCycle() {
	start := date(2020, 1, 1)
	children := []time.Time{date(2019, 9, 1), date(2017, 5, 1)}
	got := s.calculator.CalculateEntitlement(ptr(date(2020, 6, 1)), children, start)

	s.Equal(16, got.TotalVoucherEntitlement())
	s.Equal(4960, got.TotalVoucherValueInPence())
	s.Equal(8, got.VouchersForChildrenUnderOne())
	s.Equal(4, got.VouchersForChildrenBetweenOneAndFour())
	s.Equal(310, got.SingleVoucherValueInPence())
	last, ok := got.LastEntitlementDate()
	s.True(ok)
	s.Equal(date(2020, 1, 22), last)
}

func (s *CycleCalculatorSuite) TestChildTurningOneMidCycle() {
	start := date(2020, 1, 1)
	children := []time.Time{date(2019, 1, 10)}
	got := s.calculator.CalculateEntitlement(nil, children, start)

	// under one on the 1st and 8th, one to four on the 15th and 22nd
	s.Equal(4, got.VouchersForChildrenUnderOne())
	s.Equal(2, got.VouchersForChildrenBetweenOneAndFour())
	s.Equal(6, got.TotalVoucherEntitlement())
}

func (s *CycleCalculatorSuite) TestRelevantExpectedDeliveryDate() {
	due := date(2020, 2, 10)

	s.Run("kept when no child matches the pregnancy", func() {
		got := s.calculator.RelevantExpectedDeliveryDate(&due, []time.Time{date(2017, 1, 1)})
		s.Require().NotNil(got)
		s.Equal(due, *got)
	})
	s.Run("dropped when a child is born shortly before the due date", func() {
		s.Nil(s.calculator.RelevantExpectedDeliveryDate(&due, []time.Time{date(2020, 2, 3)}))
	})
	s.Run("dropped when a child is born late", func() {
		s.Nil(s.calculator.RelevantExpectedDeliveryDate(&due, []time.Time{date(2020, 2, 24)}))
	})
	s.Run("nil stays nil", func() {
		s.Nil(s.calculator.RelevantExpectedDeliveryDate(nil, nil))
	})
}

// =============================================================================
// Backdating
// =============================================================================

func (s *CycleCalculatorSuite) pregnancyCycle(start time.Time, due time.Time) *PreviousCycle {
	entitlement := s.calculator.CalculateEntitlement(&due, nil, start)
	return &PreviousCycle{ExpectedDeliveryDate: &due, Entitlement: &entitlement}
}

func (s *CycleCalculatorSuite) TestBackdatesVouchersForNewbornReportedLate() {
	due := date(2020, 2, 10)
	previous := s.pregnancyCycle(date(2020, 1, 29), due)
	current := date(2020, 2, 26)
	newborn := date(2020, 2, 5)

	got := s.calculator.CalculateEntitlementWithBackdating(&due, []time.Time{newborn}, current, previous)

	// 5th, 12th and 19th Feb: two vouchers for the baby less the pregnancy
	// voucher already paid on each date
	s.Equal(3, got.BackdatedVouchers())
	s.Equal(3, got.VoucherEntitlements[0].BackdatedVouchers)
	for _, v := range got.VoucherEntitlements[1:] {
		s.Zero(v.BackdatedVouchers)
	}
	s.Equal(0, got.VouchersForPregnancy())
	s.Equal(8, got.VouchersForChildrenUnderOne())
	s.Equal(11, got.TotalVoucherEntitlement())
	s.Equal(3410, got.TotalVoucherValueInPence())
}

func (s *CycleCalculatorSuite) TestBackdatingIsNotRepeated() {
	due := date(2020, 2, 10)
	previous := s.pregnancyCycle(date(2020, 1, 29), due)
	current := date(2020, 2, 26)
	children := []time.Time{date(2020, 2, 5)}

	s.Run("recalculating the same cycle gives the same amount", func() {
		first := s.calculator.CalculateEntitlementWithBackdating(&due, children, current, previous)
		second := s.calculator.CalculateEntitlementWithBackdating(&due, children, current, previous)
		s.Equal(first, second)
		s.Equal(3, second.BackdatedVouchers())
	})

	s.Run("the following cycle does not backdate again", func() {
		thisCycle := s.calculator.CalculateEntitlementWithBackdating(&due, children, current, previous)
		next := s.calculator.CalculateEntitlementWithBackdating(&due, children, current.AddDate(0, 0, 28), &PreviousCycle{
			ChildrenDob:          children,
			ExpectedDeliveryDate: &due,
			Entitlement:          &thisCycle,
		})
		s.Equal(0, next.BackdatedVouchers())
	})
}

func (s *CycleCalculatorSuite) TestBackdatingTwins() {
	due := date(2020, 2, 10)
	older := date(2017, 6, 1)
	previousEntitlement := s.calculator.CalculateEntitlement(&due, []time.Time{older}, date(2020, 1, 29))
	previous := &PreviousCycle{
		ChildrenDob:          []time.Time{older},
		ExpectedDeliveryDate: &due,
		Entitlement:          &previousEntitlement,
	}
	twins := date(2020, 2, 5)

	got := s.calculator.CalculateEntitlementWithBackdating(&due, []time.Time{older, twins, twins}, date(2020, 2, 26), previous)

	// three dates, four vouchers for the twins less one pregnancy voucher
	s.Equal(9, got.BackdatedVouchers())
}

func (s *CycleCalculatorSuite) TestNoBackdatingWithoutPreviousPregnancyVouchers() {
	older := date(2018, 6, 1)
	previousEntitlement := s.calculator.CalculateEntitlement(nil, []time.Time{older}, date(2020, 1, 29))
	previous := &PreviousCycle{ChildrenDob: []time.Time{older}, Entitlement: &previousEntitlement}

	got := s.calculator.CalculateEntitlementWithBackdating(nil, []time.Time{older, date(2020, 2, 5)}, date(2020, 2, 26), previous)
	s.Equal(0, got.BackdatedVouchers())
}

func (s *CycleCalculatorSuite) TestNoBackdatingWithoutPreviousCycle() {
	got := s.calculator.CalculateEntitlementWithBackdating(nil, []time.Time{date(2020, 2, 5)}, date(2020, 2, 26), nil)
	s.Equal(0, got.BackdatedVouchers())
}

func (s *CycleCalculatorSuite) TestBackdatedVouchersNeverNegative() {
	cfg := DefaultConfig()
	cfg.VouchersPerPregnancy = 3
	calculator := NewCycleCalculator(cfg)

	due := date(2020, 2, 10)
	previousEntitlement := calculator.CalculateEntitlement(&due, nil, date(2020, 1, 29))
	previous := &PreviousCycle{ExpectedDeliveryDate: &due, Entitlement: &previousEntitlement}

	got := calculator.CalculateEntitlementWithBackdating(&due, []time.Time{date(2020, 2, 5)}, date(2020, 2, 26), previous)
	s.Equal(0, got.BackdatedVouchers())
}

// =============================================================================
// Next cycle summary
// =============================================================================

func (s *CycleCalculatorSuite) TestNextPaymentCycleSummary() {
	start := date(2020, 1, 1) // last entitlement date 22 Jan, next cycle's 19 Feb

	tests := []struct {
		name string
		dob  time.Time
		want NextCycleSummary
	}{
		{"turns one the day after the last entitlement date", date(2019, 1, 23), NextCycleSummary{ChildrenTurningOne: 1}},
		{"turns one on the last entitlement date", date(2019, 1, 22), NextCycleSummary{}},
		{"turns one on next cycle's last entitlement date", date(2019, 2, 19), NextCycleSummary{ChildrenTurningOne: 1}},
		{"turns one after next cycle", date(2019, 2, 20), NextCycleSummary{}},
		{"turns four next cycle", date(2016, 2, 1), NextCycleSummary{ChildrenTurningFour: 1}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			got := s.calculator.NextPaymentCycleSummary(start, []time.Time{tt.dob})
			s.Equal(tt.want, got)
			s.Equal(tt.want.ChildrenTurningOne > 0, got.HasChildrenTurningOne())
			s.Equal(tt.want.ChildrenTurningFour > 0, got.HasChildrenTurningFour())
		})
	}
}
