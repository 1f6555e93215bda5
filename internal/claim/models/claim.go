package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"claimflow/pkg/platform/sentinel"
)

// ClaimStatus is the lifecycle state of a claim.
type ClaimStatus string

const (
	ClaimStatusNew           ClaimStatus = "NEW"
	ClaimStatusPending       ClaimStatus = "PENDING"
	ClaimStatusActive        ClaimStatus = "ACTIVE"
	ClaimStatusPendingExpiry ClaimStatus = "PENDING_EXPIRY"
	ClaimStatusExpired       ClaimStatus = "EXPIRED"
	ClaimStatusRejected      ClaimStatus = "REJECTED"
	ClaimStatusError         ClaimStatus = "ERROR"
)

// LiveClaimStatuses are the statuses that count towards the one live claim
// per NINO and household rule.
var LiveClaimStatuses = []ClaimStatus{
	ClaimStatusNew,
	ClaimStatusActive,
	ClaimStatusPending,
	ClaimStatusPendingExpiry,
}

// IsLive reports whether the status is one of LiveClaimStatuses.
func (s ClaimStatus) IsLive() bool {
	for _, live := range LiveClaimStatuses {
		if s == live {
			return true
		}
	}
	return false
}

// CardStatus is the lifecycle state of the claimant's payment card.
type CardStatus string

const (
	CardStatusActive                   CardStatus = "ACTIVE"
	CardStatusPendingCancellation      CardStatus = "PENDING_CANCELLATION"
	CardStatusScheduledForCancellation CardStatus = "SCHEDULED_FOR_CANCELLATION"
	CardStatusCancelled                CardStatus = "CANCELLED"
)

// EligibilityStatus is the outcome of an eligibility decision.
type EligibilityStatus string

const (
	EligibilityStatusEligible   EligibilityStatus = "ELIGIBLE"
	EligibilityStatusIneligible EligibilityStatus = "INELIGIBLE"
	EligibilityStatusPending    EligibilityStatus = "PENDING"
	EligibilityStatusNoMatch    EligibilityStatus = "NO_MATCH"
	EligibilityStatusError      EligibilityStatus = "ERROR"
	EligibilityStatusDuplicate  EligibilityStatus = "DUPLICATE"
)

// Claim is the aggregate root for one claimant's benefit claim.
//
// Invariants:
//   - ClaimStatus and CardStatus change only through the transition methods
//   - every transition stamps the matching status timestamp
//   - Claimant is immutable after construction
//   - Version increases by one on every persisted update
type Claim struct {
	ID                      uuid.UUID         `json:"id"`
	Nino                    string            `json:"nino"`
	DWPHouseholdIdentifier  string            `json:"dwpHouseholdIdentifier"`
	HMRCHouseholdIdentifier string            `json:"hmrcHouseholdIdentifier"`
	EligibilityStatus       EligibilityStatus `json:"eligibilityStatus"`
	ClaimStatus             ClaimStatus       `json:"claimStatus"`
	ClaimStatusTimestamp    time.Time         `json:"claimStatusTimestamp"`
	CardAccountID           string            `json:"cardAccountId,omitempty"`
	CardStatus              CardStatus        `json:"cardStatus,omitempty"`
	CardStatusTimestamp     *time.Time        `json:"cardStatusTimestamp,omitempty"`
	Claimant                Claimant          `json:"claimant"`
	Version                 int               `json:"version"`
	CreatedAt               time.Time         `json:"createdAt"`
	UpdatedAt               time.Time         `json:"updatedAt"`
}

// NewClaim builds a claim in the given initial status.
func NewClaim(claimant Claimant, status ClaimStatus, eligibility EligibilityStatus, dwpHousehold, hmrcHousehold string, now time.Time) *Claim {
	return &Claim{
		ID:                      uuid.New(),
		Nino:                    claimant.Nino,
		DWPHouseholdIdentifier:  dwpHousehold,
		HMRCHouseholdIdentifier: hmrcHousehold,
		EligibilityStatus:       eligibility,
		ClaimStatus:             status,
		ClaimStatusTimestamp:    now,
		Claimant:                claimant,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

var claimTransitions = map[ClaimStatus][]ClaimStatus{
	ClaimStatusNew:           {ClaimStatusActive},
	ClaimStatusPending:       {ClaimStatusNew, ClaimStatusRejected},
	ClaimStatusActive:        {ClaimStatusPendingExpiry, ClaimStatusExpired},
	ClaimStatusPendingExpiry: {ClaimStatusActive, ClaimStatusExpired},
}

var cardTransitions = map[CardStatus][]CardStatus{
	"":                                 {CardStatusActive},
	CardStatusActive:                   {CardStatusPendingCancellation},
	CardStatusPendingCancellation:      {CardStatusActive, CardStatusScheduledForCancellation},
	CardStatusScheduledForCancellation: {CardStatusCancelled, CardStatusActive},
}

// cancellationProgress orders the card statuses on the way to cancellation.
var cancellationProgress = map[CardStatus]int{
	CardStatusPendingCancellation:      1,
	CardStatusScheduledForCancellation: 2,
	CardStatusCancelled:                3,
}

// CardCancellationReached reports whether the card is already at or past to
// on the way to cancellation. The card sweep can get there before the claim
// decision does.
func (c *Claim) CardCancellationReached(to CardStatus) bool {
	have, ok := cancellationProgress[c.CardStatus]
	want, wantOK := cancellationProgress[to]
	return ok && wantOK && have >= want
}

// UpdateClaimStatus moves the claim along a permitted edge.
func (c *Claim) UpdateClaimStatus(to ClaimStatus, now time.Time) error {
	if !allowed(claimTransitions[c.ClaimStatus], to) {
		return fmt.Errorf("claim %s from %s to %s: %w", c.ID, c.ClaimStatus, to, sentinel.ErrInvalidState)
	}
	c.ClaimStatus = to
	c.ClaimStatusTimestamp = now
	c.UpdatedAt = now
	return nil
}

// UpdateCardStatus moves the card along a permitted edge. Setting the
// current status again is a no-op.
func (c *Claim) UpdateCardStatus(to CardStatus, now time.Time) error {
	if c.CardStatus == to {
		return nil
	}
	if !allowed(cardTransitions[c.CardStatus], to) {
		return fmt.Errorf("card for claim %s from %q to %s: %w", c.ID, c.CardStatus, to, sentinel.ErrInvalidState)
	}
	c.CardStatus = to
	c.CardStatusTimestamp = &now
	c.UpdatedAt = now
	return nil
}

// AssignCard records the card issued for a NEW claim.
func (c *Claim) AssignCard(cardAccountID string, now time.Time) error {
	if c.ClaimStatus != ClaimStatusNew {
		return fmt.Errorf("assign card to %s claim %s: %w", c.ClaimStatus, c.ID, sentinel.ErrInvalidState)
	}
	c.CardAccountID = cardAccountID
	c.UpdatedAt = now
	return nil
}

// HasCard reports whether a card account has been issued.
func (c *Claim) HasCard() bool {
	return c.CardAccountID != ""
}

// ClaimStatusDate returns the date the claim entered its current status.
func (c *Claim) ClaimStatusDate() time.Time {
	t := c.ClaimStatusTimestamp.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func allowed[T comparable](edges []T, to T) bool {
	for _, e := range edges {
		if e == to {
			return true
		}
	}
	return false
}
