package models

// CardRequest asks the card provider to issue a card for a claimant.
type CardRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	DateOfBirth  string `json:"dateOfBirth"`
	Email        string `json:"email,omitempty"`
	Mobile       string `json:"mobile,omitempty"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	TownOrCity   string `json:"townOrCity"`
	County       string `json:"county,omitempty"`
	Postcode     string `json:"postcode"`
	ClaimID      string `json:"claimId"`
}

type CardResponse struct {
	CardAccountID string `json:"cardAccountId"`
}

type CardBalance struct {
	AvailableBalanceInPence int `json:"availableBalanceInPence"`
	LedgerBalanceInPence    int `json:"ledgerBalanceInPence"`
}

type DepositFundsRequest struct {
	AmountInPence int    `json:"amountInPence"`
	Reference     string `json:"reference"`
}

type DepositFundsResponse struct {
	ReferenceID string `json:"referenceId"`
}
