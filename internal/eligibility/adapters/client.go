package adapters

import (
	"context"
	"fmt"
	"net/http"
	"time"

	claimmodels "claimflow/internal/claim/models"
	"claimflow/internal/eligibility"
	"claimflow/pkg/platform/httpclient"
)

const eligibilityPath = "/v2/eligibility"

// EligibilityClient calls the eligibility API over HTTP.
type EligibilityClient struct {
	client *httpclient.Client
}

func NewEligibilityClient(baseURL string, timeout time.Duration, opts ...httpclient.Option) *EligibilityClient {
	return &EligibilityClient{client: httpclient.New("eligibility", baseURL, timeout, opts...)}
}

type personRequest struct {
	Nino          string   `json:"nino"`
	DateOfBirth   string   `json:"dateOfBirth"`
	Surname       string   `json:"surname"`
	AddressLine1  string   `json:"addressLine1"`
	Postcode      string   `json:"postcode"`
	EmailAddress  string   `json:"emailAddress,omitempty"`
	PhoneNumber   string   `json:"phoneNumber,omitempty"`
	PregnantDueOn string   `json:"pregnantDependentDob,omitempty"`
	ChildrenDob   []string `json:"ukDeclaredChildrenDob,omitempty"`
}

func (c *EligibilityClient) CheckEligibility(ctx context.Context, claimant claimmodels.Claimant) (*eligibility.Response, error) {
	req := personRequest{
		Nino:         claimant.Nino,
		DateOfBirth:  claimant.DateOfBirth.Format(time.DateOnly),
		Surname:      claimant.LastName,
		AddressLine1: claimant.Address.AddressLine1,
		Postcode:     claimant.Address.Postcode,
		EmailAddress: claimant.EmailAddress,
		PhoneNumber:  claimant.PhoneNumber,
	}
	if claimant.ExpectedDeliveryDate != nil {
		req.PregnantDueOn = claimant.ExpectedDeliveryDate.Format(time.DateOnly)
	}
	for _, dob := range claimant.InitiallyDeclaredChildrenDob {
		req.ChildrenDob = append(req.ChildrenDob, dob.Format(time.DateOnly))
	}

	var resp eligibilityResponse
	if err := c.client.DoJSON(ctx, http.MethodPost, eligibilityPath, req, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain()
}

type eligibilityResponse struct {
	EligibilityStatus       string   `json:"eligibilityStatus"`
	DWPHouseholdIdentifier  string   `json:"dwpHouseholdIdentifier"`
	HMRCHouseholdIdentifier string   `json:"hmrcHouseholdIdentifier"`
	DateOfBirthOfChildren   []string `json:"dateOfBirthOfChildren"`
}

func (r eligibilityResponse) toDomain() (*eligibility.Response, error) {
	out := &eligibility.Response{
		EligibilityStatus:       claimmodels.EligibilityStatus(r.EligibilityStatus),
		DWPHouseholdIdentifier:  r.DWPHouseholdIdentifier,
		HMRCHouseholdIdentifier: r.HMRCHouseholdIdentifier,
	}
	for _, raw := range r.DateOfBirthOfChildren {
		dob, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return nil, fmt.Errorf("parse child date of birth %q: %w", raw, err)
		}
		out.DateOfBirthOfChildren = append(out.DateOfBirthOfChildren, dob)
	}
	return out, nil
}
