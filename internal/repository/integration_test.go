//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/dialbook/dialbook/internal/testutil"
)

// newRepoTestEnv connects to the test database, serializes against other
// DB tests, and resets every schema.
func newRepoTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
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

	return ctx, repo
}
