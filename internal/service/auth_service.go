package service

import (
	"context"
	"errors"
	"time"

	"github.com/facilityops/maintenance-service/internal/auth"
	"github.com/facilityops/maintenance-service/internal/config"
	"github.com/facilityops/maintenance-service/internal/domain"
	"github.com/facilityops/maintenance-service/internal/repository"
	apperrors "github.com/facilityops/maintenance-service/pkg/util"
)

// AuthService authenticates users and issues access tokens.
type AuthService struct {
	users  repository.UserStore
	tokens *auth.TokenManager
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserStore) *AuthService {
	return &AuthService{
		users:  users,
		tokens: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// LoginResult carries the issued token and the authenticated user.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Login verifies credentials and issues a token carrying the user's roles.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewUnauthorized("invalid email or password")
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid email or password")
	}
	if !user.Active {
		return nil, apperrors.NewForbidden("user account is inactive", nil)
	}

	token, expiresAt, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
