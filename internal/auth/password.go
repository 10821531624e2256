// Package auth provides credential hashing and session token utilities.
package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters. The iteration count is deliberately high so that
// recovering a password from a stored hash is computationally infeasible.
const (
	pbkdf2Iterations = 100000
	pbkdf2KeyLen     = 64
	saltLen          = 16
)

// GenerateSalt returns a fresh random salt, hex-encoded.
func GenerateSalt() (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(salt), nil
}

// HashPassword derives a hex-encoded PBKDF2-SHA512 hash of the password
// using the given salt. Plaintext passwords are never stored.
func HashPassword(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, pbkdf2KeyLen, sha512.New)
	return hex.EncodeToString(key)
}

// VerifyPassword checks the password against a stored hash and salt.
// Uses constant-time comparison to prevent timing attacks.
func VerifyPassword(password, salt, storedHash string) bool {
	computed := HashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
