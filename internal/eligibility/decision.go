// Package eligibility combines the external eligibility check, duplicate
// detection and entitlement calculation into one decision.
package eligibility

import (
	"errors"
	"time"

	"github.com/google/uuid"

	claimmodels "claimflow/internal/claim/models"
	"claimflow/internal/entitlement"
)

// ErrMultipleClaimsWithSameNino signals more than one live claim for a NINO.
// The store should make this impossible, so it is a data integrity failure.
var ErrMultipleClaimsWithSameNino = errors.New("multiple live claims with the same nino")

// QualifyingBenefitStatus records whether the claimant receives a
// qualifying benefit, independent of children or pregnancy.
type QualifyingBenefitStatus string

const (
	QualifyingBenefitConfirmed    QualifyingBenefitStatus = "CONFIRMED"
	QualifyingBenefitNotConfirmed QualifyingBenefitStatus = "NOT_CONFIRMED"
)

func qualifyingBenefitStatusFrom(status claimmodels.EligibilityStatus) QualifyingBenefitStatus {
	if status == claimmodels.EligibilityStatusEligible {
		return QualifyingBenefitConfirmed
	}
	return QualifyingBenefitNotConfirmed
}

// Response is what the eligibility collaborator returns for a claimant.
type Response struct {
	EligibilityStatus       claimmodels.EligibilityStatus `json:"eligibilityStatus"`
	DWPHouseholdIdentifier  string                        `json:"dwpHouseholdIdentifier,omitempty"`
	HMRCHouseholdIdentifier string                        `json:"hmrcHouseholdIdentifier,omitempty"`
	DateOfBirthOfChildren   []time.Time                   `json:"dateOfBirthOfChildren,omitempty"`
}

// Decision is the combined outcome for one evaluation.
type Decision struct {
	EligibilityStatus       claimmodels.EligibilityStatus
	QualifyingBenefitStatus QualifyingBenefitStatus
	VoucherEntitlement      entitlement.PaymentCycleVoucherEntitlement
	DateOfBirthOfChildren   []time.Time
	DWPHouseholdIdentifier  string
	HMRCHouseholdIdentifier string
	ExistingClaimID         *uuid.UUID
}

// NewDecision builds a decision from a collaborator response. An eligible
// claimant with nothing to pay for is ineligible.
func NewDecision(resp Response, e entitlement.PaymentCycleVoucherEntitlement, existingClaimID *uuid.UUID) Decision {
	status := resp.EligibilityStatus
	if status == claimmodels.EligibilityStatusEligible && e.TotalVoucherEntitlement() == 0 {
		status = claimmodels.EligibilityStatusIneligible
	}
	return Decision{
		EligibilityStatus:       status,
		QualifyingBenefitStatus: qualifyingBenefitStatusFrom(resp.EligibilityStatus),
		VoucherEntitlement:      e,
		DateOfBirthOfChildren:   resp.DateOfBirthOfChildren,
		DWPHouseholdIdentifier:  resp.DWPHouseholdIdentifier,
		HMRCHouseholdIdentifier: resp.HMRCHouseholdIdentifier,
		ExistingClaimID:         existingClaimID,
	}
}

func (d Decision) IsEligible() bool {
	return d.EligibilityStatus == claimmodels.EligibilityStatusEligible
}

// LostQualifyingBenefit is true when the claimant no longer receives a
// qualifying benefit, as opposed to having no children or pregnancy to pay for.
func (d Decision) LostQualifyingBenefit() bool {
	return d.QualifyingBenefitStatus != QualifyingBenefitConfirmed
}
