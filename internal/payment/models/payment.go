package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const PaymentStatusSuccess PaymentStatus = "SUCCESS"

// Payment records one deposit made to a claimant's card.
type Payment struct {
	ID                   uuid.UUID     `json:"id"`
	ClaimID              uuid.UUID     `json:"claimId"`
	PaymentCycleID       uuid.UUID     `json:"paymentCycleId"`
	CardAccountID        string        `json:"cardAccountId"`
	PaymentAmountInPence int           `json:"paymentAmountInPence"`
	PaymentTimestamp     time.Time     `json:"paymentTimestamp"`
	RequestReference     string        `json:"requestReference"`
	ResponseReference    string        `json:"responseReference"`
	PaymentStatus        PaymentStatus `json:"paymentStatus"`
}
