// Package service provides business logic for the application.
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/dialbook/dialbook/internal/model"
	"github.com/dialbook/dialbook/internal/repository"
)

// UserStore is the persistence surface the auth service needs.
// *repository.Repository satisfies it; tests use in-memory fakes.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// ContactStore is the ownership-scoped persistence surface for contacts.
type ContactStore interface {
	ListContacts(ctx context.Context, ownerID uuid.UUID) ([]*model.Contact, error)
	CreateContact(ctx context.Context, contact *model.Contact) error
	UpdateContact(ctx context.Context, ownerID, id uuid.UUID, update repository.ContactUpdate) (*model.Contact, error)
	DeleteContact(ctx context.Context, ownerID, id uuid.UUID) error
	SetFavorite(ctx context.Context, ownerID, id uuid.UUID, change repository.FavoriteChange) (*model.Contact, error)
}

// CallLogStore is the ownership-scoped persistence surface for call logs.
type CallLogStore interface {
	ListCallLogs(ctx context.Context, ownerID uuid.UUID) ([]*model.CallLog, error)
	CreateCallLog(ctx context.Context, log *model.CallLog) error
}
