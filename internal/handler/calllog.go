package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dialbook/dialbook/internal/auth"
	"github.com/dialbook/dialbook/internal/handler/dto"
	"github.com/dialbook/dialbook/internal/model"
	"github.com/dialbook/dialbook/internal/service"
)

// CallLogHandler handles HTTP requests for call-log operations.
type CallLogHandler struct {
	svc    *service.CallLogService
	logger *slog.Logger
}

// NewCallLogHandler creates a new CallLogHandler.
func NewCallLogHandler(svc *service.CallLogService, logger *slog.Logger) *CallLogHandler {
	return &CallLogHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /calls. Returns the caller's history, newest first.
func (h *CallLogHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.UserIDFromContext(r.Context())

	logs, err := h.svc.List(r.Context(), ownerID)
	if err != nil {
		h.handleCallLogError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, logs)
}

// Record handles POST /calls. Recording is best-effort: if the log cannot
// be written, the response is still 201 carrying a transient local record
// with persisted:false, because the call itself already happened.
func (h *CallLogHandler) Record(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.UserIDFromContext(r.Context())

	var req dto.RecordCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	input := service.RecordCallInput{
		Type:            model.CallType(req.Type),
		Name:            req.Name,
		Phone:           req.Phone,
		DurationSeconds: req.DurationSeconds,
	}
	if req.Timestamp != nil {
		input.Timestamp = *req.Timestamp
	}
	// A contact reference that does not parse is dropped, not rejected:
	// the log's denormalized name and phone still identify the call.
	if req.ContactID != nil {
		if contactID, err := uuid.Parse(*req.ContactID); err == nil {
			input.ContactID = &contactID
		}
	}

	result, err := h.svc.Record(r.Context(), ownerID, input)
	if err != nil {
		h.handleCallLogError(w, err)
		return
	}

	if !result.Persisted {
		h.logger.Error("call_log_not_persisted", "owner_id", ownerID, "error", result.Err)
	}

	writeJSON(w, http.StatusCreated, dto.RecordCallResponse{
		CallLog:   result.Log,
		Persisted: result.Persisted,
	})
}

// handleCallLogError maps call-log service errors to HTTP responses.
func (h *CallLogHandler) handleCallLogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCallType):
		writeError(w, http.StatusBadRequest, "Invalid call type")
	case errors.Is(err, service.ErrPhoneRequired):
		writeError(w, http.StatusBadRequest, "Phone required")
	default:
		// Unexpected failures get a generic message and a client-error
		// status; the details only go to the log.
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusBadRequest, "An internal error occurred")
	}
}
