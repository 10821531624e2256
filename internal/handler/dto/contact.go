package dto

// CreateContactRequest represents the request body for creating a contact.
// Owner identity is never read from the body; it comes from the session.
type CreateContactRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phones   []string `json:"phones"`
	Avatar   string   `json:"avatar"`
	Favorite bool     `json:"favorite"`
}

// UpdateContactRequest represents a partial update. Absent fields stay
// untouched; present fields overwrite, including present-but-empty ones.
type UpdateContactRequest struct {
	Name     *string   `json:"name,omitempty"`
	Email    *string   `json:"email,omitempty"`
	Phones   *[]string `json:"phones,omitempty"`
	Avatar   *string   `json:"avatar,omitempty"`
	Favorite *bool     `json:"favorite,omitempty"`
}

// FavoriteRequest optionally carries an explicit favorite value.
// A nil Value (or an empty body) means toggle.
type FavoriteRequest struct {
	Value *bool `json:"value"`
}
