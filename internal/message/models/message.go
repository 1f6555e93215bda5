package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageType names a kind of queued work.
type MessageType string

const (
	MessageTypeRequestNewCard       MessageType = "REQUEST_NEW_CARD"
	MessageTypeCompleteNewCard      MessageType = "COMPLETE_NEW_CARD"
	MessageTypeMakeFirstPayment     MessageType = "MAKE_FIRST_PAYMENT"
	MessageTypeDetermineEntitlement MessageType = "DETERMINE_ENTITLEMENT"
	MessageTypeMakePayment          MessageType = "MAKE_PAYMENT"
	MessageTypeSendEmail            MessageType = "SEND_EMAIL"
	MessageTypeReportClaim          MessageType = "REPORT_CLAIM"
)

// MessageTypes is the order a sweep visits the queue in. Work enqueued for a
// later type during a sweep is picked up by the same sweep.
var MessageTypes = []MessageType{
	MessageTypeRequestNewCard,
	MessageTypeCompleteNewCard,
	MessageTypeMakeFirstPayment,
	MessageTypeDetermineEntitlement,
	MessageTypeMakePayment,
	MessageTypeSendEmail,
	MessageTypeReportClaim,
}

// IsValid reports whether t is one of MessageTypes.
func (t MessageType) IsValid() bool {
	for _, known := range MessageTypes {
		if t == known {
			return true
		}
	}
	return false
}

// MessageStatus is what a processor reports for one message.
type MessageStatus string

const (
	MessageStatusCompleted MessageStatus = "COMPLETED"
	MessageStatusError     MessageStatus = "ERROR"
)

// Message is a queued work item. It is written once and deleted once
// processed; it is never updated.
type Message struct {
	ID               uuid.UUID       `json:"id"`
	Type             MessageType     `json:"messageType"`
	Payload          json.RawMessage `json:"payload"`
	CreatedTimestamp time.Time       `json:"createdTimestamp"`
}

// NewMessage encodes payload into a message of the given type.
func NewMessage(t MessageType, payload any, now time.Time) (*Message, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("unknown message type %q", t)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return &Message{
		ID:               uuid.New(),
		Type:             t,
		Payload:          raw,
		CreatedTimestamp: now,
	}, nil
}

// DecodePayload unmarshals a message payload into T.
func DecodePayload[T any](msg *Message) (T, error) {
	var payload T
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("decode %s payload of message %s: %w", msg.Type, msg.ID, err)
	}
	return payload, nil
}
