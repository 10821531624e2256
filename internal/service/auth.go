package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dialbook/dialbook/internal/auth"
	"github.com/dialbook/dialbook/internal/model"
	"github.com/dialbook/dialbook/internal/repository"
)

// Auth service errors.
var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrEmailTaken         = errors.New("email already registered")
	// ErrInvalidCredentials is returned for unknown emails and wrong
	// passwords alike, so callers cannot probe which emails exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// dummySalt keeps login timing uniform when the email is unknown: the
// same key derivation runs whether or not the user exists.
const dummySalt = "00000000000000000000000000000000"

// AuthService implements signup, login, and token issuance.
// The token manager carries the signing secret; nothing here reads
// ambient global state.
type AuthService struct {
	users  UserStore
	tokens *auth.TokenManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Signup registers a new account and issues a session token.
func (s *AuthService) Signup(ctx context.Context, email, name, password string) (string, *model.User, error) {
	if email == "" || password == "" {
		return "", nil, ErrMissingCredentials
	}

	salt, err := auth.GenerateSalt()
	if err != nil {
		return "", nil, fmt.Errorf("generate salt: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: auth.HashPassword(password, salt),
		Salt:         salt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return "", nil, ErrEmailTaken
		}
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	return token, user, nil
}

// Login verifies credentials and issues a session token. The failure is
// generic: it never distinguishes "no such user" from "wrong password".
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Burn the same derivation time as a real verification.
			auth.HashPassword(password, dummySalt)
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.VerifyPassword(password, user.Salt, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	return token, user, nil
}
