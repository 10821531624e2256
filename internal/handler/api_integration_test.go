package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dialbook/dialbook/internal/auth"
	"github.com/dialbook/dialbook/internal/cache"
	"github.com/dialbook/dialbook/internal/handler/dto"
	"github.com/dialbook/dialbook/internal/middleware"
	"github.com/dialbook/dialbook/internal/model"
	"github.com/dialbook/dialbook/internal/repository"
	"github.com/dialbook/dialbook/internal/service"
	"github.com/dialbook/dialbook/internal/testutil"
)

// newAPITestEnv wires the full stack - real Postgres, real Redis, real
// bearer-token middleware - behind the same routes main sets up.
func newAPITestEnv(t *testing.T) http.Handler {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetUsersSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset users schema: %v", err)
	}
	if err := testutil.ResetContactsSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset contacts schema: %v", err)
	}
	if err := testutil.ResetCallLogsSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset call_logs schema: %v", err)
	}

	cacheClient, err := cache.New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() {
		_ = cacheClient.Close()
	})
	if err := testutil.FlushRedis(ctx, cacheClient.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenManager("api-integration-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	authHandler := NewAuthHandler(service.NewAuthService(repo, tokens), logger)
	contactHandler := NewContactHandler(service.NewContactService(repo), logger)
	callHandler := NewCallLogHandler(service.NewCallLogService(repo), logger)

	r := chi.NewRouter()
	r.Post("/auth/signup", authHandler.Signup)
	r.Post("/auth/login", authHandler.Login)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{
			Logger:   logger,
			Tokens:   tokens,
			Sessions: cacheClient,
		}))
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

	return r
}

func apiRequest(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
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
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func signupUser(t *testing.T, router http.Handler, email string) string {
	t.Helper()
	rec := apiRequest(t, router, http.MethodPost, "/auth/signup", "", dto.SignupRequest{
		Email:    email,
		Password: "hunter22",
		Name:     "Integration User",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: status = %d, body %s", rec.Code, rec.Body.String())
	}
	return decodeBody[dto.AuthResponse](t, rec).Token
}

func TestIntegrationAPIFullFlow(t *testing.T) {
	router := newAPITestEnv(t)
	token := signupUser(t, router, testutil.UniqueEmail(t))

	// Create two contacts, one favorited.
	rec := apiRequest(t, router, http.MethodPost, "/contacts", token, dto.CreateContactRequest{
		Name:   "Zoe",
		Phones: []string{"+1 555 0100"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create Zoe: status = %d, body %s", rec.Code, rec.Body.String())
	}
	zoe := decodeBody[model.Contact](t, rec)

	rec = apiRequest(t, router, http.MethodPost, "/contacts", token, dto.CreateContactRequest{
		Name:     "Amy",
		Favorite: true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create Amy: status = %d", rec.Code)
	}

	// List is favorites first, then by name.
	rec = apiRequest(t, router, http.MethodGet, "/contacts", token, nil)
	contacts := decodeBody[[]model.Contact](t, rec)
	if len(contacts) != 2 || contacts[0].Name != "Amy" || contacts[1].Name != "Zoe" {
		t.Fatalf("list = %+v, want [Amy Zoe]", contacts)
	}

	// Free-text filter on a phone number.
	rec = apiRequest(t, router, http.MethodGet, "/contacts?q=0100", token, nil)
	if filtered := decodeBody[[]model.Contact](t, rec); len(filtered) != 1 || filtered[0].Name != "Zoe" {
		t.Errorf("phone filter = %+v, want just Zoe", filtered)
	}

	// Grouped shape: favorites bucket first.
	rec = apiRequest(t, router, http.MethodGet, "/contacts?grouped=1", token, nil)
	groups := decodeBody[[]service.ContactGroup](t, rec)
	if len(groups) != 2 || groups[0].Key != service.FavoritesBucket || groups[1].Key != "Z" {
		t.Errorf("groups = %+v", groups)
	}

	// Partial update.
	email := "zoe@example.com"
	rec = apiRequest(t, router, http.MethodPut, "/contacts/"+zoe.ID.String(), token, dto.UpdateContactRequest{Email: &email})
	if updated := decodeBody[model.Contact](t, rec); updated.Email != email || updated.Name != "Zoe" {
		t.Errorf("update = %+v", updated)
	}

	// Favorite toggle.
	rec = apiRequest(t, router, http.MethodPost, "/contacts/"+zoe.ID.String()+"/favorite", token, nil)
	if fav := decodeBody[model.Contact](t, rec); !fav.Favorite {
		t.Error("toggle: favorite = false, want true")
	}

	// Record a call referencing the contact, then list it.
	rec = apiRequest(t, router, http.MethodPost, "/calls", token, dto.RecordCallRequest{
		Type:            "outgoing",
		ContactID:       ptr(zoe.ID.String()),
		Name:            "Zoe",
		Phone:           "+1 555 0100",
		DurationSeconds: 30,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("record call: status = %d, body %s", rec.Code, rec.Body.String())
	}
	if call := decodeBody[dto.RecordCallResponse](t, rec); !call.Persisted {
		t.Error("persisted = false, want true")
	}

	rec = apiRequest(t, router, http.MethodGet, "/calls", token, nil)
	if logs := decodeBody[[]model.CallLog](t, rec); len(logs) != 1 || logs[0].Phone != "+1 555 0100" {
		t.Errorf("calls = %+v", logs)
	}

	// Delete, then verify it is gone.
	rec = apiRequest(t, router, http.MethodDelete, "/contacts/"+zoe.ID.String(), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status = %d", rec.Code)
	}
	rec = apiRequest(t, router, http.MethodDelete, "/contacts/"+zoe.ID.String(), token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want 404", rec.Code)
	}

	// The call log survives its contact.
	rec = apiRequest(t, router, http.MethodGet, "/calls", token, nil)
	if logs := decodeBody[[]model.CallLog](t, rec); len(logs) != 1 {
		t.Errorf("calls after contact delete = %d, want 1", len(logs))
	}
}

func TestIntegrationAPICrossTenant(t *testing.T) {
	router := newAPITestEnv(t)
	aliceToken := signupUser(t, router, testutil.UniqueEmail(t))
	bobToken := signupUser(t, router, testutil.UniqueEmail(t))

	rec := apiRequest(t, router, http.MethodPost, "/contacts", aliceToken, dto.CreateContactRequest{Name: "Secret"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d", rec.Code)
	}
	secret := decodeBody[model.Contact](t, rec)

	// Bob sees nothing of Alice's data.
	rec = apiRequest(t, router, http.MethodGet, "/contacts", bobToken, nil)
	if contacts := decodeBody[[]model.Contact](t, rec); len(contacts) != 0 {
		t.Errorf("bob sees %d contacts", len(contacts))
	}

	rec = apiRequest(t, router, http.MethodDelete, "/contacts/"+secret.ID.String(), bobToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-tenant delete: status = %d, want 404", rec.Code)
	}

	rec = apiRequest(t, router, http.MethodPut, "/contacts/"+secret.ID.String(), bobToken, dto.UpdateContactRequest{Name: ptr("Hijacked")})
	if rec.Code != http.StatusOK || len(bytes.TrimSpace(rec.Body.Bytes())) != 4 {
		t.Errorf("cross-tenant update: status = %d body %q, want 200 null", rec.Code, rec.Body.String())
	}
}

func TestIntegrationAPIUnauthorized(t *testing.T) {
	router := newAPITestEnv(t)

	for _, path := range []string{"/contacts", "/calls"} {
		rec := apiRequest(t, router, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s without token: status = %d, want 401", path, rec.Code)
		}
	}

	rec := apiRequest(t, router, http.MethodGet, "/contacts", "forged-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("forged token: status = %d, want 401", rec.Code)
	}
}

func ptr[T any](v T) *T {
	return &v
}
