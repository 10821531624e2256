package model

import (
	"time"

	"github.com/google/uuid"
)

// CallType classifies a logged call event.
type CallType string

const (
	CallIncoming CallType = "incoming"
	CallOutgoing CallType = "outgoing"
	CallMissed   CallType = "missed"
)

// IsValid checks if the call type is one of the supported values.
func (t CallType) IsValid() bool {
	return t == CallIncoming || t == CallOutgoing || t == CallMissed
}

// CallLog is an immutable, owner-scoped record of a call event.
// Name and Phone are denormalized at record time: a log stays readable even
// after the referenced contact is deleted or renamed.
type CallLog struct {
	ID              uuid.UUID  `json:"id"`
	OwnerID         uuid.UUID  `json:"ownerId"`
	Type            CallType   `json:"type"`
	ContactID       *uuid.UUID `json:"contactId"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	Timestamp       time.Time  `json:"timestamp"`
	DurationSeconds int        `json:"durationSeconds"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
