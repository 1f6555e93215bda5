package models

import (
	"strings"
	"time"

	dErrors "claimflow/pkg/domain-errors"
)

// Address is the claimant's postal address.
type Address struct {
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	TownOrCity   string `json:"townOrCity"`
	County       string `json:"county,omitempty"`
	Postcode     string `json:"postcode"`
}

// Claimant is the personal data supplied at claim time. It is never changed
// once a claim has been created.
type Claimant struct {
	FirstName                    string      `json:"firstName"`
	LastName                     string      `json:"lastName"`
	Nino                         string      `json:"nino"`
	DateOfBirth                  time.Time   `json:"dateOfBirth"`
	ExpectedDeliveryDate         *time.Time  `json:"expectedDeliveryDate,omitempty"`
	EmailAddress                 string      `json:"emailAddress"`
	PhoneNumber                  string      `json:"phoneNumber,omitempty"`
	Address                      Address     `json:"address"`
	InitiallyDeclaredChildrenDob []time.Time `json:"initiallyDeclaredChildrenDob,omitempty"`
}

// Validate checks the fields the workflow cannot run without.
func (c Claimant) Validate() error {
	if strings.TrimSpace(c.Nino) == "" {
		return dErrors.New(dErrors.CodeValidation, "claimant nino is required")
	}
	if c.DateOfBirth.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "claimant date of birth is required")
	}
	if strings.TrimSpace(c.Address.Postcode) == "" {
		return dErrors.New(dErrors.CodeValidation, "claimant postcode is required")
	}
	return nil
}
