// Package reporting publishes claim analytics reports enriched with postcode
// data.
package reporting

import (
	"time"

	"github.com/google/uuid"

	claimmodels "claimflow/internal/claim/models"
)

// ClaimAction names the event a report describes.
type ClaimAction string

const (
	ClaimActionNew                               ClaimAction = "NEW"
	ClaimActionRejected                          ClaimAction = "REJECTED"
	ClaimActionUpdated                           ClaimAction = "UPDATED"
	ClaimActionUpdatedFromNewToActive            ClaimAction = "UPDATED_FROM_NEW_TO_ACTIVE"
	ClaimActionUpdatedFromActiveToPendingExpiry  ClaimAction = "UPDATED_FROM_ACTIVE_TO_PENDING_EXPIRY"
	ClaimActionUpdatedFromActiveToExpired        ClaimAction = "UPDATED_FROM_ACTIVE_TO_EXPIRED"
	ClaimActionUpdatedFromPendingExpiryToExpired ClaimAction = "UPDATED_FROM_PENDING_EXPIRY_TO_EXPIRED"
	ClaimActionUpdatedFromPendingExpiryToActive  ClaimAction = "UPDATED_FROM_PENDING_EXPIRY_TO_ACTIVE"
)

// ActionForTransition returns the action reported for a claim status change,
// or ClaimActionUpdated when the edge has no dedicated action.
func ActionForTransition(from, to claimmodels.ClaimStatus) ClaimAction {
	switch {
	case from == claimmodels.ClaimStatusNew && to == claimmodels.ClaimStatusActive:
		return ClaimActionUpdatedFromNewToActive
	case from == claimmodels.ClaimStatusActive && to == claimmodels.ClaimStatusPendingExpiry:
		return ClaimActionUpdatedFromActiveToPendingExpiry
	case from == claimmodels.ClaimStatusActive && to == claimmodels.ClaimStatusExpired:
		return ClaimActionUpdatedFromActiveToExpired
	case from == claimmodels.ClaimStatusPendingExpiry && to == claimmodels.ClaimStatusExpired:
		return ClaimActionUpdatedFromPendingExpiryToExpired
	case from == claimmodels.ClaimStatusPendingExpiry && to == claimmodels.ClaimStatusActive:
		return ClaimActionUpdatedFromPendingExpiryToActive
	default:
		return ClaimActionUpdated
	}
}

// PostcodeData is the geography attached to a report.
type PostcodeData struct {
	Postcode                  string `json:"postcode"`
	OutwardCode               string `json:"outcode"`
	Country                   string `json:"country"`
	Region                    string `json:"region"`
	AdminDistrict             string `json:"admin_district"`
	AdminWard                 string `json:"admin_ward"`
	ParliamentaryConstituency string `json:"parliamentary_constituency"`
}

// PostcodeDataNotFound marks a postcode the lookup service does not know.
var PostcodeDataNotFound = PostcodeData{
	Postcode:                  "NOT_FOUND",
	OutwardCode:               "NOT_FOUND",
	Country:                   "NOT_FOUND",
	Region:                    "NOT_FOUND",
	AdminDistrict:             "NOT_FOUND",
	AdminWard:                 "NOT_FOUND",
	ParliamentaryConstituency: "NOT_FOUND",
}

// ClaimReport is one analytics event. It carries no names or contact
// details.
type ClaimReport struct {
	ClaimID                  uuid.UUID                     `json:"claimId"`
	ClaimAction              ClaimAction                   `json:"claimAction"`
	ClaimStatus              claimmodels.ClaimStatus       `json:"claimStatus"`
	EligibilityStatus        claimmodels.EligibilityStatus `json:"eligibilityStatus"`
	CardStatus               claimmodels.CardStatus        `json:"cardStatus,omitempty"`
	UpdatedClaimantFields    []string                      `json:"updatedClaimantFields,omitempty"`
	ClaimantAgeInYears       int                           `json:"claimantAgeInYears"`
	Pregnant                 bool                          `json:"pregnant"`
	NumberOfChildrenDeclared int                           `json:"numberOfChildrenDeclared"`
	PostcodeData             PostcodeData                  `json:"postcodeData"`
	Timestamp                time.Time                     `json:"timestamp"`
}

// NewClaimReport builds the report for a claim as it stands at timestamp.
func NewClaimReport(claim *claimmodels.Claim, action ClaimAction, updatedFields []string, postcode PostcodeData, timestamp time.Time) ClaimReport {
	claimant := claim.Claimant
	return ClaimReport{
		ClaimID:                  claim.ID,
		ClaimAction:              action,
		ClaimStatus:              claim.ClaimStatus,
		EligibilityStatus:        claim.EligibilityStatus,
		CardStatus:               claim.CardStatus,
		UpdatedClaimantFields:    updatedFields,
		ClaimantAgeInYears:       ageInYears(claimant.DateOfBirth, timestamp),
		Pregnant:                 claimant.ExpectedDeliveryDate != nil,
		NumberOfChildrenDeclared: len(claimant.InitiallyDeclaredChildrenDob),
		PostcodeData:             postcode,
		Timestamp:                timestamp,
	}
}

func ageInYears(dob, at time.Time) int {
	if dob.IsZero() {
		return 0
	}
	years := at.Year() - dob.Year()
	if at.Month() < dob.Month() || (at.Month() == dob.Month() && at.Day() < dob.Day()) {
		years--
	}
	return years
}
