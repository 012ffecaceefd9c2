// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"

	"github.com/pingme/pingme/internal/auth"
	"github.com/pingme/pingme/internal/model"
	"github.com/pingme/pingme/internal/repository"
	"github.com/pingme/pingme/internal/session"
)

// Service errors.
var (
	ErrEmailExists        = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
)

// UserStore is the credential-store capability the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateUserPassword(ctx context.Context, userID, passwordHash string) error
}

// AuthService handles signup, login, and logout.
type AuthService struct {
	users    UserStore
	sessions session.Store
	validate *validator.Validate
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, sessions session.Store) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		validate: validator.New(),
	}
}

// SignupInput defines input for creating an account.
type SignupInput struct {
	Username string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Signup creates a new account with a salted one-way password hash.
// Returns ErrEmailExists when the email is already registered; the
// storage layer's unique constraint decides, so concurrent signups with
// the same email cannot both succeed.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*model.User, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and establishes a new session holding a
// snapshot of the user. Unknown emails map to ErrUserNotFound and wrong
// passwords to ErrInvalidCredentials; callers may collapse the two when
// responding to avoid account enumeration.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.Session, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, *user)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sess, nil
}

// Logout destroys the session. Store errors are reported, not retried.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}
