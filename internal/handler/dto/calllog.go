package dto

import (
	"time"

	"github.com/dialbook/dialbook/internal/model"
)

// RecordCallRequest represents the request body for recording a call
// attempt.
type RecordCallRequest struct {
	Type            string     `json:"type"`
	ContactID       *string    `json:"contactId"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	Timestamp       *time.Time `json:"timestamp"`
	DurationSeconds int        `json:"durationSeconds"`
}

// RecordCallResponse is the recorded log plus a persistence flag. When
// Persisted is false the log is a transient local record the server
// could not write; the call itself still went ahead.
type RecordCallResponse struct {
	*model.CallLog
	Persisted bool `json:"persisted"`
}
