package dto

import "github.com/dialbook/dialbook/internal/model"

// SignupRequest represents the request body for account registration.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries a session token and the account it belongs to.
// The user's credential fields never serialize; see model.User.
type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}
