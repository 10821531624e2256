package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dialbook/dialbook/internal/auth"
	"github.com/dialbook/dialbook/internal/model"
	"github.com/dialbook/dialbook/internal/repository"
	"github.com/dialbook/dialbook/internal/service"
)

// fakeStore is an in-memory stand-in for *repository.Repository, mirroring
// its ownership filter and list ordering.
type fakeStore struct {
	users    map[uuid.UUID]*model.User
	contacts map[uuid.UUID]*model.Contact
	logs     []*model.CallLog

	failCreateCallLog  bool
	failListCallLogs   bool
	failListContacts   bool
	failGetUserByEmail bool
}

// errStoreUnavailable stands in for any unexpected store failure that no
// sentinel covers.
var errStoreUnavailable = errors.New("store unavailable")

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
	if f.failGetUserByEmail {
		return nil, errStoreUnavailable
	}
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
	if f.failListContacts {
		return nil, errStoreUnavailable
	}
	var out []*model.Contact
	for _, c := range f.contacts {
		if c.OwnerID == ownerID {
			clone := *c
			out = append(out, &clone)
		}
	}
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
	if f.failListCallLogs {
		return nil, errStoreUnavailable
	}
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
		return errStoreUnavailable
	}
	clone := *log
	f.logs = append(f.logs, &clone)
	return nil
}

// testUserHeader carries the acting owner's ID in tests, standing in for
// the bearer-token middleware.
const testUserHeader = "X-Test-User"

func testAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.Header.Get(testUserHeader))
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		ctx := auth.ContextWithSession(r.Context(), &auth.Session{UserID: userID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type testAPI struct {
	router http.Handler
	store  *fakeStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := newFakeStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens, err := auth.NewTokenManager("handler-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	authHandler := NewAuthHandler(service.NewAuthService(store, tokens), logger)
	contactHandler := NewContactHandler(service.NewContactService(store), logger)
	callHandler := NewCallLogHandler(service.NewCallLogService(store), logger)

	r := chi.NewRouter()
	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)
	r.Post("/auth/signup", authHandler.Signup)
	r.Post("/auth/login", authHandler.Login)
	r.Group(func(r chi.Router) {
		r.Use(testAuth)
		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", contactHandler.List)
			r.Post("/", contactHandler.Create)
			r.Put("/{id}", contactHandler.Update)
			r.Delete("/{id}", contactHandler.Delete)
			r.Post("/{id}/favorite", contactHandler.Favorite)
		})
		r.Route("/calls", func(r chi.Router) {
			r.Get("/", callHandler.List)
			r.Post("/", callHandler.Record)
		})
	})

	return &testAPI{router: r, store: store}
}

func (a *testAPI) do(t *testing.T, method, path string, owner uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if owner != uuid.Nil {
		req.Header.Set(testUserHeader, owner.String())
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func seedContact(a *testAPI, owner uuid.UUID, name string, favorite bool) *model.Contact {
	now := time.Now().UTC()
	c := &model.Contact{
		ID:        uuid.New(),
		OwnerID:   owner,
		Name:      name,
		Phones:    []string{},
		Favorite:  favorite,
		CreatedAt: now,
		UpdatedAt: now,
	}
	a.store.contacts[c.ID] = c
	return c
}
