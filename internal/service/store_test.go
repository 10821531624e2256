package service

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/dialbook/dialbook/internal/model"
	"github.com/dialbook/dialbook/internal/repository"
)

// fakeStore is an in-memory stand-in for *repository.Repository. It
// mirrors the store's ownership filter and list ordering so service tests
// exercise the same contracts without a database.
type fakeStore struct {
	users    map[uuid.UUID]*model.User
	contacts map[uuid.UUID]*model.Contact
	logs     []*model.CallLog

	failCreateCallLog bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[uuid.UUID]*model.User),
		contacts: make(map[uuid.UUID]*model.Contact),
	}
}

func (f *fakeStore) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeStore) GetUserByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeStore) ListContacts(_ context.Context, ownerID uuid.UUID) ([]*model.Contact, error) {
	var out []*model.Contact
	for _, c := range f.contacts {
		if c.OwnerID == ownerID {
			clone := *c
			out = append(out, &clone)
		}
	}
	// Same order as the store: favorite desc, name asc (byte-wise), id.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Favorite != out[j].Favorite {
			return out[i].Favorite
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (f *fakeStore) CreateContact(_ context.Context, contact *model.Contact) error {
	clone := *contact
	f.contacts[contact.ID] = &clone
	return nil
}

func (f *fakeStore) UpdateContact(_ context.Context, ownerID, id uuid.UUID, update repository.ContactUpdate) (*model.Contact, error) {
	c, ok := f.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return nil, repository.ErrContactNotFound
	}
	if update.Name != nil {
		c.Name = *update.Name
	}
	if update.Email != nil {
		c.Email = *update.Email
	}
	if update.Phones != nil {
		c.Phones = *update.Phones
	}
	if update.Avatar != nil {
		c.Avatar = *update.Avatar
	}
	if update.Favorite != nil {
		c.Favorite = *update.Favorite
	}
	clone := *c
	return &clone, nil
}

func (f *fakeStore) DeleteContact(_ context.Context, ownerID, id uuid.UUID) error {
	c, ok := f.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return repository.ErrContactNotFound
	}
	delete(f.contacts, id)
	return nil
}

func (f *fakeStore) SetFavorite(_ context.Context, ownerID, id uuid.UUID, change repository.FavoriteChange) (*model.Contact, error) {
	c, ok := f.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return nil, repository.ErrContactNotFound
	}
	c.Favorite = change.Apply(c.Favorite)
	clone := *c
	return &clone, nil
}

func (f *fakeStore) ListCallLogs(_ context.Context, ownerID uuid.UUID) ([]*model.CallLog, error) {
	var out []*model.CallLog
	for _, l := range f.logs {
		if l.OwnerID == ownerID {
			clone := *l
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (f *fakeStore) CreateCallLog(_ context.Context, log *model.CallLog) error {
	if f.failCreateCallLog {
		return errors.New("store unavailable")
	}
	clone := *log
	f.logs = append(f.logs, &clone)
	return nil
}
