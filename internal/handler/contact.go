package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dialbook/dialbook/internal/auth"
	"github.com/dialbook/dialbook/internal/handler/dto"
	"github.com/dialbook/dialbook/internal/repository"
	"github.com/dialbook/dialbook/internal/service"
)

// ContactHandler handles HTTP requests for contact operations. Every
// operation is scoped to the authenticated owner; a contact belonging to
// someone else is indistinguishable from one that does not exist.
type ContactHandler struct {
	svc    *service.ContactService
	logger *slog.Logger
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(svc *service.ContactService, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /contacts. Supports ?q= for free-text filtering and
// ?grouped=1 for the display-bucketed shape.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.UserIDFromContext(r.Context())
	query := r.URL.Query()

	contacts, err := h.svc.List(r.Context(), ownerID, query.Get("q"))
	if err != nil {
		h.handleContactError(w, err)
		return
	}

	if query.Get("grouped") == "1" {
		writeJSON(w, http.StatusOK, service.GroupContacts(contacts))
		return
	}

	writeJSON(w, http.StatusOK, contacts)
}

// Create handles POST /contacts.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.UserIDFromContext(r.Context())

	var req dto.CreateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	contact, err := h.svc.Create(r.Context(), ownerID, service.CreateContactInput{
		Name:     req.Name,
		Email:    req.Email,
		Phones:   req.Phones,
		Avatar:   req.Avatar,
		Favorite: req.Favorite,
	})
	if err != nil {
		h.handleContactError(w, err)
		return
	}

	h.logger.Info("contact_created", "contact_id", contact.ID, "owner_id", ownerID)

	writeJSON(w, http.StatusCreated, contact)
}

// Update handles PUT /contacts/{id}. Updating a contact that does not
// exist (or is owned by someone else) is not an error here: the response
// is 200 with a null body, and the client treats it as a no-op.
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.UserIDFromContext(r.Context())

	id, ok := parseContactID(r)
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	var req dto.UpdateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	contact, err := h.svc.Update(r.Context(), ownerID, id, service.UpdateContactInput{
		Name:     req.Name,
		Email:    req.Email,
		Phones:   req.Phones,
		Avatar:   req.Avatar,
		Favorite: req.Favorite,
	})
	if err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			writeJSON(w, http.StatusOK, nil)
			return
		}
		h.handleContactError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

// Delete handles DELETE /contacts/{id}.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.UserIDFromContext(r.Context())

	id, ok := parseContactID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Contact not found")
		return
	}

	if err := h.svc.Delete(r.Context(), ownerID, id); err != nil {
		h.handleContactError(w, err)
		return
	}

	h.logger.Info("contact_deleted", "contact_id", id, "owner_id", ownerID)

	writeJSON(w, http.StatusOK, dto.OKResponse{OK: true})
}

// Favorite handles POST /contacts/{id}/favorite. An empty body (or one
// without a value field) toggles the flag; {"value": true|false} sets it
// explicitly, which is idempotent.
func (h *ContactHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.UserIDFromContext(r.Context())

	id, ok := parseContactID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Contact not found")
		return
	}

	var req dto.FavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	change := repository.ToggleFavorite()
	if req.Value != nil {
		change = repository.SetFavoriteTo(*req.Value)
	}

	contact, err := h.svc.Favorite(r.Context(), ownerID, id, change)
	if err != nil {
		h.handleContactError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

// parseContactID extracts the {id} route parameter. An unparseable ID
// behaves like an ID that matches nothing.
func parseContactID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// handleContactError maps contact service errors to HTTP responses.
func (h *ContactHandler) handleContactError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNameRequired):
		writeError(w, http.StatusBadRequest, "Name required")
	case errors.Is(err, service.ErrContactNotFound):
		writeError(w, http.StatusNotFound, "Contact not found")
	default:
		// Unexpected failures get a generic message and a client-error
		// status; the details only go to the log.
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusBadRequest, "An internal error occurred")
	}
}
