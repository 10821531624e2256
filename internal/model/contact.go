package model

import (
	"time"

	"github.com/google/uuid"
)

// Contact is a person entry owned by exactly one user.
// Every read or write must be filtered by (id, owner_id) jointly; the owner
// reference is always derived from the authenticated caller, never from the
// request payload.
type Contact struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"ownerId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phones    []string  `json:"phones"`
	Avatar    string    `json:"avatar"`
	Favorite  bool      `json:"favorite"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
