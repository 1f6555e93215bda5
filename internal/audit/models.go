package audit

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventNewClaim                 EventType = "NEW_CLAIM"
	EventNewCard                  EventType = "NEW_CARD"
	EventMakePayment              EventType = "MAKE_PAYMENT"
	EventBalanceTooHighForPayment EventType = "BALANCE_TOO_HIGH_FOR_PAYMENT"
)

// Event is emitted from domain logic to capture key actions on a claim. Keep
// it transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp time.Time
	Type      EventType
	ClaimID   uuid.UUID
	Fields    map[string]any
}
