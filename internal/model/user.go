// Package model defines domain entities for the application.
package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account that owns contacts and call logs.
// PasswordHash and Salt are never serialized to any external representation.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
