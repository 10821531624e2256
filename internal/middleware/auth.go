package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dialbook/dialbook/internal/auth"
)

// TokenVerifier validates a bearer token and returns the caller identity
// and the token's expiry. *auth.TokenManager satisfies it.
type TokenVerifier interface {
	Verify(raw string) (uuid.UUID, time.Time, error)
}

// SessionCache caches verified caller identities keyed by token hash.
// SetSession receives the token's remaining life so the entry never
// outlives the token. *cache.Cache satisfies it; nil disables caching.
type SessionCache interface {
	GetSession(ctx context.Context, tokenHash string) (uuid.UUID, bool)
	SetSession(ctx context.Context, tokenHash string, userID uuid.UUID, tokenTTL time.Duration) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Tokens   TokenVerifier
	Sessions SessionCache
}

// Auth returns a middleware that authenticates API requests. It extracts
// the bearer token from the Authorization header, verifies it (consulting
// the session cache first), and injects the caller's Session into the
// request context. The owner identity used by every downstream data
// access is derived here, from the token - never from the request body.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				logAuthFailure(cfg.Logger, r, "missing_token")
				writeAuthError(w)
				return
			}

			tokenHash := auth.QuickHash(token)

			// Check cache first. A hit skips verification entirely; the
			// entry's TTL is capped at the token's expiry, so the hit
			// cannot resurrect an expired token.
			if cfg.Sessions != nil {
				if userID, ok := cfg.Sessions.GetSession(r.Context(), tokenHash); ok {
					ctx := auth.ContextWithSession(r.Context(), &auth.Session{
						UserID:    userID,
						TokenHash: tokenHash,
					})
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			userID, expiresAt, err := cfg.Tokens.Verify(token)
			if err != nil {
				logAuthFailure(cfg.Logger, r, "invalid_token")
				writeAuthError(w)
				return
			}

			if cfg.Sessions != nil {
				_ = cfg.Sessions.SetSession(r.Context(), tokenHash, userID, time.Until(expiresAt))
			}

			ctx := auth.ContextWithSession(r.Context(), &auth.Session{
				UserID:    userID,
				TokenHash: tokenHash,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken extracts the token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures: callers must not learn
// whether the token was missing, malformed, expired, or forged.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
}
