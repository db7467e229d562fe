package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vagaroute/backend/internal/domain"
	"github.com/vagaroute/backend/internal/repo"
)

// TokenIssuer issues a session token for an authenticated user.
// auth.TokenManager satisfies this.
type TokenIssuer interface {
	Issue(user domain.User) (string, error)
}

// AuthService implements registration, login, and profile management.
type AuthService struct {
	users  repo.UserRepo
	tokens TokenIssuer
}

// NewAuthService constructs an AuthService backed by the provided user repo
// and token issuer.
func NewAuthService(users repo.UserRepo, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates a new account and returns it together with a session token.
// Returns domain.ErrValidation for missing/weak input and domain.ErrEmailTaken
// when the email is already registered.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (domain.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return domain.User{}, "", fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return domain.User{}, "", fmt.Errorf("%w: a valid email is required", domain.ErrValidation)
	}
	if len(password) < 8 {
		return domain.User{}, "", fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("service.AuthService.Register: %w", err)
	}

	user, err := s.users.Create(ctx, domain.User{Name: name, Email: email, PasswordHash: string(hash)})
	if err != nil {
		return domain.User{}, "", fmt.Errorf("service.AuthService.Register: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("service.AuthService.Register: %w", err)
	}
	return user, token, nil
}

// Login authenticates an email/password pair and returns the user with a
// fresh session token. Returns domain.ErrUnauthorized for an unknown email
// or wrong password — deliberately the same error for both, so the response
// does not reveal which part was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, "", fmt.Errorf("service.AuthService.Login: %w: invalid email or password", domain.ErrUnauthorized)
		}
		return domain.User{}, "", fmt.Errorf("service.AuthService.Login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, "", fmt.Errorf("service.AuthService.Login: %w: invalid email or password", domain.ErrUnauthorized)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("service.AuthService.Login: %w", err)
	}
	return user, token, nil
}

// Profile returns the account for the given user ID.
func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Profile: %w", err)
	}
	return user, nil
}

// UpdateProfile changes the display name and/or photo URL of an account.
// An empty name or photoURL keeps the current value, so callers can update
// one field without knowing the other.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, name, photoURL string) (domain.User, error) {
	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.UpdateProfile: %w", err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = current.Name
	}
	if photoURL == "" {
		photoURL = current.PhotoURL
	}

	user, err := s.users.UpdateProfile(ctx, userID, name, photoURL)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.UpdateProfile: %w", err)
	}
	return user, nil
}
