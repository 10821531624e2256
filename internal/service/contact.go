package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dialbook/dialbook/internal/model"
	"github.com/dialbook/dialbook/internal/repository"
)

// Contact service errors.
var (
	ErrNameRequired    = errors.New("contact name is required")
	ErrContactNotFound = errors.New("contact not found")
)

// ContactService handles contact CRUD and the list query engine.
type ContactService struct {
	store ContactStore
}

// NewContactService creates a new ContactService.
func NewContactService(store ContactStore) *ContactService {
	return &ContactService{store: store}
}

// List returns the owner's contacts, favorites first then by name, with an
// optional free-text filter applied server-side. The filter is independent
// of the sort: it narrows the list without reordering it.
func (s *ContactService) List(ctx context.Context, ownerID uuid.UUID, query string) ([]*model.Contact, error) {
	contacts, err := s.store.ListContacts(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	contacts = SearchContacts(contacts, query)
	if contacts == nil {
		contacts = []*model.Contact{}
	}

	return contacts, nil
}

// CreateContactInput defines input for creating a contact. Any owner value
// a client might have supplied is discarded before this point; the owner
// comes exclusively from the verified session.
type CreateContactInput struct {
	Name     string
	Email    string
	Phones   []string
	Avatar   string
	Favorite bool
}

// Create inserts a new contact owned by the caller.
func (s *ContactService) Create(ctx context.Context, ownerID uuid.UUID, input CreateContactInput) (*model.Contact, error) {
	if input.Name == "" {
		return nil, ErrNameRequired
	}

	phones := input.Phones
	if phones == nil {
		phones = []string{}
	}

	now := time.Now().UTC()
	contact := &model.Contact{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      input.Name,
		Email:     input.Email,
		Phones:    phones,
		Avatar:    input.Avatar,
		Favorite:  input.Favorite,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}

	return contact, nil
}

// UpdateContactInput defines the partial-update fields for a contact.
type UpdateContactInput struct {
	Name     *string
	Email    *string
	Phones   *[]string
	Avatar   *string
	Favorite *bool
}

// Update applies a partial update to a contact the caller owns.
func (s *ContactService) Update(ctx context.Context, ownerID, id uuid.UUID, input UpdateContactInput) (*model.Contact, error) {
	if input.Name != nil && *input.Name == "" {
		return nil, ErrNameRequired
	}

	contact, err := s.store.UpdateContact(ctx, ownerID, id, repository.ContactUpdate{
		Name:     input.Name,
		Email:    input.Email,
		Phones:   input.Phones,
		Avatar:   input.Avatar,
		Favorite: input.Favorite,
	})
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}

	return contact, nil
}

// Delete removes a contact the caller owns. Call logs referencing the
// contact are left in place; they carry their own denormalized name and
// phone.
func (s *ContactService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.store.DeleteContact(ctx, ownerID, id); err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return ErrContactNotFound
		}
		return err
	}
	return nil
}

// Favorite toggles or explicitly sets the favorite flag on a contact the
// caller owns. The toggle-vs-explicit choice is resolved at the API
// boundary into the tagged FavoriteChange variant.
func (s *ContactService) Favorite(ctx context.Context, ownerID, id uuid.UUID, change repository.FavoriteChange) (*model.Contact, error) {
	contact, err := s.store.SetFavorite(ctx, ownerID, id, change)
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	return contact, nil
}
