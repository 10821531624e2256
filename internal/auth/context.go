package auth

import (
	"context"

	"github.com/google/uuid"
)

// Session identifies an authenticated caller for the lifetime of a request.
type Session struct {
	UserID uuid.UUID
	// TokenHash is the cache-key hash of the presented token, kept so that
	// downstream code never needs the raw credential.
	TokenHash string
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const sessionContextKey contextKey = "session"

// ContextWithSession adds the caller's Session to the context.
func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SessionFromContext retrieves the Session from the context.
// Returns nil if not present.
func SessionFromContext(ctx context.Context) *Session {
	s, ok := ctx.Value(sessionContextKey).(*Session)
	if !ok {
		return nil
	}
	return s
}

// UserIDFromContext is a convenience function to get the caller's user ID.
// Returns uuid.Nil if not authenticated.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	s := SessionFromContext(ctx)
	if s == nil {
		return uuid.Nil
	}
	return s.UserID
}
