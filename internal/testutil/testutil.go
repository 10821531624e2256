// Package testutil provides helpers for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/dialbook/dialbook/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 734734

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// resetSchema drops and recreates one table's schema from its migration
// pair.
func resetSchema(ctx context.Context, pool *pgxpool.Pool, name string) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	downPath := filepath.Join(root, "migrations", name+".down.sql")
	upPath := filepath.Join(root, "migrations", name+".up.sql")

	downSQL, err := os.ReadFile(downPath)
	if err != nil {
		return fmt.Errorf("read down migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
		return fmt.Errorf("apply down migration: %w", err)
	}

	upSQL, err := os.ReadFile(upPath)
	if err != nil {
		return fmt.Errorf("read up migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
		return fmt.Errorf("apply up migration: %w", err)
	}

	return nil
}

// ResetUsersSchema drops and recreates the users schema for tests.
func ResetUsersSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000001_users")
}

// ResetContactsSchema drops and recreates the contacts schema for tests.
func ResetContactsSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000002_contacts")
}

// ResetCallLogsSchema drops and recreates the call_logs schema for tests.
func ResetCallLogsSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000003_call_logs")
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// UniqueEmail returns an email address unique to this test run.
func UniqueEmail(t testing.TB) string {
	t.Helper()
	return fmt.Sprintf("user-%d@example.com", time.Now().UnixNano())
}

// NewTestUser creates a test user with sensible defaults.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	now := time.Now().UTC()
	return &model.User{
		ID:           uuid.New(),
		Email:        UniqueEmail(t),
		Name:         "Test User",
		PasswordHash: "not-a-real-hash",
		Salt:         "not-a-real-salt",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestContact creates a test contact owned by the given user.
func NewTestContact(t testing.TB, ownerID uuid.UUID, name string) *model.Contact {
	t.Helper()
	now := time.Now().UTC()
	return &model.Contact{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		Email:     "contact@example.com",
		Phones:    []string{"+1 555 0100"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestCallLog creates a test call log owned by the given user.
func NewTestCallLog(t testing.TB, ownerID uuid.UUID, ts time.Time) *model.CallLog {
	t.Helper()
	now := time.Now().UTC()
	return &model.CallLog{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Type:      model.CallOutgoing,
		Name:      "Test Contact",
		Phone:     "+1 555 0100",
		Timestamp: ts,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
