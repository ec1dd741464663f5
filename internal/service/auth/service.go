package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/techbyhenry/acode-api/internal/domain"
	"github.com/techbyhenry/acode-api/internal/platform/logger"
)

// Service orchestrates registration, login, logout and token refresh.
type Service struct {
	credentials *Credentials
	tokens      TokenService
	logger      *slog.Logger
}

// NewService creates a Service.
func NewService(credentials *Credentials, tokens TokenService, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		credentials: credentials,
		tokens:      tokens,
		logger:      logger.With(slog.String("component", "auth_service")),
	}
}

// Register creates a user and issues its first token pair. A confirmation
// mismatch is rejected before any user lookup or write.
func (s *Service) Register(ctx context.Context, email, password, confirmPassword string) (*domain.User, *TokenPair, error) {
	if password != confirmPassword {
		return nil, nil, domain.NewValidationError("password", "Password fields didn't match.", domain.ErrPasswordMismatch)
	}

	user, err := s.credentials.Create(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return user, pair, nil
}

// Login verifies credentials and issues a new token pair. No token is
// issued on failure.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	user, err := s.credentials.Verify(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user logged in",
		slog.String("user_id", user.ID.String()))
	return user, pair, nil
}

// Logout blacklists refreshToken. Input problems of any kind surface as
// ErrInvalidRefreshToken; only persistence failures are returned as
// internal errors.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrInvalidRefreshToken
	}
	err := s.tokens.Invalidate(ctx, refreshToken)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidRefreshToken), errors.Is(err, ErrExpiredRefreshToken):
		return ErrInvalidRefreshToken
	default:
		return err
	}
}

// Refresh exchanges refreshToken for a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	return s.tokens.Rotate(ctx, refreshToken)
}
