package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	// sessionCachePrefix is the Redis key prefix for verified-session cache.
	sessionCachePrefix = "session:"
	// sessionCacheTTL is the upper bound on a cached session's lifetime.
	// Entries are further capped at the token's own remaining life, so a
	// cache hit can never honor an expired token.
	sessionCacheTTL = 5 * time.Minute
)

// sessionKey builds the Redis key for a token hash.
func sessionKey(tokenHash string) string {
	return sessionCachePrefix + tokenHash
}

// GetSession retrieves a cached caller identity by token hash.
// A miss or corrupt entry returns ok=false, never an error: the caller
// falls back to full token verification.
func (c *Cache) GetSession(ctx context.Context, tokenHash string) (uuid.UUID, bool) {
	data, err := c.client.Get(ctx, sessionKey(tokenHash)).Result()
	if err != nil {
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(data)
	if err != nil {
		return uuid.Nil, false
	}

	return userID, true
}

// SetSession caches a verified caller identity under the token hash.
// tokenTTL is the token's remaining life; a token that is about to expire
// gets a correspondingly short entry, and one already at its end is not
// cached at all.
func (c *Cache) SetSession(ctx context.Context, tokenHash string, userID uuid.UUID, tokenTTL time.Duration) error {
	ttl := sessionTTL(tokenTTL)
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, sessionKey(tokenHash), userID.String(), ttl).Err()
}

// sessionTTL caps the cache entry lifetime at the token's remaining life.
func sessionTTL(tokenTTL time.Duration) time.Duration {
	if tokenTTL < sessionCacheTTL {
		return tokenTTL
	}
	return sessionCacheTTL
}

// DeleteSession removes a cached session. Used by tests and operational
// tooling; tokens themselves cannot be revoked before expiry.
func (c *Cache) DeleteSession(ctx context.Context, tokenHash string) error {
	return c.client.Del(ctx, sessionKey(tokenHash)).Err()
}
