package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"go-employee-api/internal/model"
	"go-employee-api/internal/repository"
	"go-employee-api/internal/token"
)

type AuthService struct {
	users  repository.CredentialStore
	signer token.Signer
}

func NewAuthService(users repository.CredentialStore, signer token.Signer) *AuthService {
	return &AuthService{users: users, signer: signer}
}

// Login exchanges an email or username plus password for an access token.
// Unknown users and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, identifier string, password string) (string, error) {
	user, err := s.users.FindByIdentifier(ctx, identifier)
	if errors.Is(err, model.ErrUserNotFound) {
		return "", model.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", model.ErrInvalidCredentials
	}

	return s.signer.Sign(user)
}

// Authenticate resolves a bearer token to the user it was issued for.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (model.AuthUser, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.AuthUser{}, model.ErrMissingToken
	}

	claims, err := s.signer.Verify(raw)
	if err != nil {
		return model.AuthUser{}, model.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.AuthUser{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.AuthUser{}, fmt.Errorf("load token user: %w", err)
	}

	return user.Public(), nil
}
