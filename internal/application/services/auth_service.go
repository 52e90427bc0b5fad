package services

import (
	"context"
	"fmt"
	"log"

	"github.com/wareflow/backend/internal/domain/models"
	"github.com/wareflow/backend/internal/domain/ports"
	"github.com/wareflow/backend/pkg/auth"
	apperrors "github.com/wareflow/backend/pkg/errors"
)

// AuthService authenticates users and issues JWT sessions
type AuthService struct {
	users ports.UserRepository
	clock ports.Clock
}

// NewAuthService creates a new AuthService
func NewAuthService(users ports.UserRepository, clock ports.Clock) *AuthService {
	return &AuthService{users: users, clock: clock}
}

// LoginResult is a successful authentication outcome
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login verifies the credentials and returns a signed token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorizedError("invalid email or password")
		}
		return nil, err
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, apperrors.NewUnauthorizedError("invalid email or password")
	}

	token, err := auth.GenerateToken(auth.UserSession{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Printf("✅ User %s logged in", user.Email)
	return &LoginResult{Token: token, User: user}, nil
}

// Register creates a user account with a hashed password
func (s *AuthService) Register(ctx context.Context, name, email, password, role string) (*models.User, error) {
	if !auth.IsValidEmail(email) {
		return nil, apperrors.NewValidationError("email", "invalid email address")
	}
	if err := auth.ValidatePasswordStrength(password); err != nil {
		return nil, apperrors.NewValidationError("password", err.Error())
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.NewConflictError("user", email)
	} else if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		CreatedDate:  s.clock.Now(),
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser resolves a user by id
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}
