package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dialbook/dialbook/internal/model"
)

// Call-log service errors.
var (
	ErrInvalidCallType = errors.New("call type must be incoming, outgoing, or missed")
	ErrPhoneRequired   = errors.New("call log phone is required")
)

// CallLogService records call attempts scoped to the caller.
type CallLogService struct {
	store CallLogStore
}

// NewCallLogService creates a new CallLogService.
func NewCallLogService(store CallLogStore) *CallLogService {
	return &CallLogService{store: store}
}

// List returns the owner's call logs, newest first, capped by the store.
func (s *CallLogService) List(ctx context.Context, ownerID uuid.UUID) ([]*model.CallLog, error) {
	logs, err := s.store.ListCallLogs(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []*model.CallLog{}
	}
	return logs, nil
}

// RecordCallInput defines input for recording a call attempt.
type RecordCallInput struct {
	Type            model.CallType
	ContactID       *uuid.UUID
	Name            string
	Phone           string
	Timestamp       time.Time
	DurationSeconds int
}

// RecordResult distinguishes a persisted log from a local fallback.
// When Persisted is false, Log is a transient record that was never
// written; Err carries the persistence failure for logging.
type RecordResult struct {
	Log       *model.CallLog
	Persisted bool
	Err       error
}

// Record persists a call attempt. Recording is best-effort: persistence
// failure yields a fallback result instead of an error, so the caller's
// call-initiation path never fails on logging. Invalid input still errors.
func (s *CallLogService) Record(ctx context.Context, ownerID uuid.UUID, input RecordCallInput) (RecordResult, error) {
	if !input.Type.IsValid() {
		return RecordResult{}, ErrInvalidCallType
	}
	if input.Phone == "" {
		return RecordResult{}, ErrPhoneRequired
	}

	now := time.Now().UTC()
	timestamp := input.Timestamp
	if timestamp.IsZero() {
		timestamp = now
	}

	log := &model.CallLog{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		Type:            input.Type,
		ContactID:       input.ContactID,
		Name:            input.Name,
		Phone:           input.Phone,
		Timestamp:       timestamp,
		DurationSeconds: input.DurationSeconds,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.CreateCallLog(ctx, log); err != nil {
		// Transient local record: identical content, never written.
		local := *log
		local.ID = uuid.Nil
		return RecordResult{Log: &local, Persisted: false, Err: err}, nil
	}

	return RecordResult{Log: log, Persisted: true}, nil
}
