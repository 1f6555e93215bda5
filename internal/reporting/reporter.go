package reporting

import (
	"context"
	"fmt"
	"time"

	claimmodels "claimflow/internal/claim/models"
)

// Reporter enriches a claim with postcode data and publishes the report.
type Reporter struct {
	postcodes PostcodeLookup
	publisher Publisher
}

func NewReporter(postcodes PostcodeLookup, publisher Publisher) *Reporter {
	return &Reporter{postcodes: postcodes, publisher: publisher}
}

func (r *Reporter) ReportClaim(ctx context.Context, claim *claimmodels.Claim, action ClaimAction, updatedFields []string, timestamp time.Time) error {
	postcode, err := r.postcodes.Lookup(ctx, claim.Claimant.Address.Postcode)
	if err != nil {
		return fmt.Errorf("look up postcode for claim %s: %w", claim.ID, err)
	}
	report := NewClaimReport(claim, action, updatedFields, postcode, timestamp)
	if err := r.publisher.Publish(ctx, report); err != nil {
		return fmt.Errorf("publish report for claim %s: %w", claim.ID, err)
	}
	return nil
}
