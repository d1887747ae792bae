package auth

import (
	"context"
	"fmt"
	"strings"
)

// Service implements account registration and login on top of the user
// repository, Argon2id hashing, and JWT issuance.
type Service struct {
	users      UserRepository
	jwtSecret  string
	ttlMinutes int
}

// NewService creates an auth service.
func NewService(users UserRepository, jwtSecret string, ttlMinutes int) *Service {
	return &Service{users: users, jwtSecret: jwtSecret, ttlMinutes: ttlMinutes}
}

// Register creates a new account. The email is lower-cased before
// storage so lookups are case-insensitive.
func (s *Service) Register(ctx context.Context, email, displayName, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !IsValidEmail(email) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: hash,
	}
	if user.DisplayName == "" {
		user.DisplayName = email
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues an access token.
// Lookup misses and hash mismatches both return ErrInvalidCredentials
// so responses do not reveal which accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, "", ErrInvalidCredentials
	}

	token, err := GenerateAccessToken(user, s.jwtSecret, s.ttlMinutes)
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}
	return user, token, nil
}
