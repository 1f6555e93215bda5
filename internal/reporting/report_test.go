package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	claimmodels "claimflow/internal/claim/models"
)

func TestActionForTransition(t *testing.T) {
	tests := []struct {
		from, to claimmodels.ClaimStatus
		want     ClaimAction
	}{
		{claimmodels.ClaimStatusNew, claimmodels.ClaimStatusActive, ClaimActionUpdatedFromNewToActive},
		{claimmodels.ClaimStatusActive, claimmodels.ClaimStatusPendingExpiry, ClaimActionUpdatedFromActiveToPendingExpiry},
		{claimmodels.ClaimStatusActive, claimmodels.ClaimStatusExpired, ClaimActionUpdatedFromActiveToExpired},
		{claimmodels.ClaimStatusPendingExpiry, claimmodels.ClaimStatusExpired, ClaimActionUpdatedFromPendingExpiryToExpired},
		{claimmodels.ClaimStatusPendingExpiry, claimmodels.ClaimStatusActive, ClaimActionUpdatedFromPendingExpiryToActive},
		{claimmodels.ClaimStatusPending, claimmodels.ClaimStatusNew, ClaimActionUpdated},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, ActionForTransition(tt.from, tt.to))
		})
	}
}

func TestNewClaimReport(t *testing.T) {
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	claimant := claimmodels.Claimant{
		FirstName:                    "Lisa",
		DateOfBirth:                  time.Date(2000, 6, 15, 0, 0, 0, 0, time.UTC),
		ExpectedDeliveryDate:         &due,
		InitiallyDeclaredChildrenDob: []time.Time{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	claim := claimmodels.NewClaim(claimant, claimmodels.ClaimStatusNew, claimmodels.EligibilityStatusEligible, "", "", due)

	report := NewClaimReport(claim, ClaimActionNew, []string{"address"}, PostcodeDataNotFound,
		time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, claim.ID, report.ClaimID)
	assert.Equal(t, 25, report.ClaimantAgeInYears, "birthday not yet reached")
	assert.True(t, report.Pregnant)
	assert.Equal(t, 1, report.NumberOfChildrenDeclared)
	assert.Equal(t, "NOT_FOUND", report.PostcodeData.Region)
	assert.Equal(t, []string{"address"}, report.UpdatedClaimantFields)
}

type stubLookup struct {
	data  PostcodeData
	err   error
	calls int
}

func (s *stubLookup) Lookup(context.Context, string) (PostcodeData, error) {
	s.calls++
	return s.data, s.err
}

func TestReporter_PublishesEnrichedReport(t *testing.T) {
	lookup := &stubLookup{data: PostcodeData{Postcode: "AA1 1AA", Region: "London"}}
	publisher := NewInMemoryPublisher()
	r := NewReporter(lookup, publisher)
	claim := claimmodels.NewClaim(claimmodels.Claimant{Address: claimmodels.Address{Postcode: "AA1 1AA"}},
		claimmodels.ClaimStatusActive, claimmodels.EligibilityStatusEligible, "", "", time.Now())

	require.NoError(t, r.ReportClaim(context.Background(), claim, ClaimActionUpdatedFromNewToActive, nil, time.Now()))

	reports := publisher.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, "London", reports[0].PostcodeData.Region)
	assert.Equal(t, ClaimActionUpdatedFromNewToActive, reports[0].ClaimAction)
}

func TestReporter_LookupFailureIsReturned(t *testing.T) {
	lookup := &stubLookup{err: errors.New("boom")}
	publisher := NewInMemoryPublisher()
	r := NewReporter(lookup, publisher)
	claim := claimmodels.NewClaim(claimmodels.Claimant{}, claimmodels.ClaimStatusActive, claimmodels.EligibilityStatusEligible, "", "", time.Now())

	err := r.ReportClaim(context.Background(), claim, ClaimActionUpdated, nil, time.Now())

	require.Error(t, err)
	assert.Empty(t, publisher.Reports())
}
