package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/techbyhenry/acode-api/internal/config"
	"github.com/techbyhenry/acode-api/internal/platform/logger"
	"github.com/techbyhenry/acode-api/internal/redact"
	"github.com/techbyhenry/acode-api/internal/store"
)

// MinSecretLength is the minimum HMAC signing key length.
const MinSecretLength = 32

// hmacTokenService implements TokenService with HS256-signed JWTs and a
// persistent refresh token blacklist.
type hmacTokenService struct {
	signingKey             []byte
	accessLifetime         time.Duration
	refreshLifetime        time.Duration
	rotate                 bool
	blacklistAfterRotation bool
	clockSkew              time.Duration
	timeFunc               func() time.Time // Injectable for testing
	blacklist              store.TokenBlacklistStore
}

// jwtCustomClaims defines the structure of JWT claims we use
type jwtCustomClaims struct {
	UserID    uuid.UUID `json:"uid"`
	TokenType string    `json:"type"`
	jwt.RegisteredClaims
}

var _ TokenService = (*hmacTokenService)(nil)

// TokenServiceOption customizes a token service.
type TokenServiceOption func(*hmacTokenService)

// WithTimeFunc replaces the clock used for issuing and validating tokens.
func WithTimeFunc(f func() time.Time) TokenServiceOption {
	return func(s *hmacTokenService) {
		s.timeFunc = f
	}
}

// NewTokenService creates a TokenService from cfg. The access token lifetime
// must be strictly shorter than the refresh token lifetime.
func NewTokenService(
	cfg config.AuthConfig,
	blacklist store.TokenBlacklistStore,
	opts ...TokenServiceOption,
) (TokenService, error) {
	if len(cfg.JWTSecret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", MinSecretLength)
	}
	if blacklist == nil {
		return nil, errors.New("token blacklist store is required")
	}
	access, refresh := cfg.AccessTokenLifetime(), cfg.RefreshTokenLifetime()
	if access <= 0 || refresh <= access {
		return nil, fmt.Errorf("access token lifetime (%s) must be positive and shorter than refresh token lifetime (%s)",
			access, refresh)
	}

	s := &hmacTokenService{
		signingKey:             []byte(cfg.JWTSecret),
		accessLifetime:         access,
		refreshLifetime:        refresh,
		rotate:                 cfg.RotateRefreshTokens,
		blacklistAfterRotation: cfg.BlacklistAfterRotation,
		clockSkew:              cfg.ClockSkew(),
		timeFunc:               time.Now,
		blacklist:              blacklist,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue implements TokenService.Issue.
func (s *hmacTokenService) Issue(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	now := s.timeFunc()

	access, accessExp, err := s.sign(ctx, userID, TokenTypeAccess, now, s.accessLifetime)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.sign(ctx, userID, TokenTypeRefresh, now, s.refreshLifetime)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *hmacTokenService) sign(
	ctx context.Context,
	userID uuid.UUID,
	tokenType string,
	now time.Time,
	lifetime time.Duration,
) (string, time.Time, error) {
	expiresAt := now.Add(lifetime)
	claims := jwtCustomClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign token",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("token_type", tokenType))
		return "", time.Time{}, fmt.Errorf("failed to sign %s token with HMAC-SHA256: %w", tokenType, err)
	}
	// Expiry is carried with second precision.
	return signed, jwt.NewNumericDate(expiresAt).Time, nil
}

// parse verifies signature, algorithm and time claims. The returned errors
// are jwt library errors; callers translate them for their token type.
func (s *hmacTokenService) parse(tokenString string) (*jwtCustomClaims, error) {
	now := s.timeFunc()
	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtCustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid || claims.ID == "" || claims.UserID == uuid.Nil {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (s *hmacTokenService) parseRefresh(ctx context.Context, tokenString string) (*jwtCustomClaims, error) {
	log := logger.FromContext(ctx)

	claims, err := s.parse(tokenString)
	if err != nil {
		log.Debug("refresh token validation failed",
			slog.String("error", redact.Error(err)),
			slog.String("token_type", TokenTypeRefresh))
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredRefreshToken
		}
		return nil, ErrInvalidRefreshToken
	}
	if claims.TokenType != TokenTypeRefresh {
		log.Debug("refresh token validation failed: wrong token type",
			slog.String("actual", claims.TokenType))
		return nil, fmt.Errorf("%w: %w", ErrInvalidRefreshToken, ErrWrongTokenType)
	}
	return claims, nil
}

func blacklistEntry(claims *jwtCustomClaims, now time.Time) store.BlacklistEntry {
	return store.BlacklistEntry{
		TokenID:       claims.ID,
		UserID:        claims.UserID,
		ExpiresAt:     claims.ExpiresAt.Time,
		BlacklistedAt: now.UTC(),
	}
}

// Rotate implements TokenService.Rotate.
func (s *hmacTokenService) Rotate(ctx context.Context, refreshToken string) (*TokenPair, error) {
	log := logger.FromContext(ctx)

	claims, err := s.parseRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if s.rotate && s.blacklistAfterRotation {
		// Check and insert are one statement; losing the insert means the
		// token was already blacklisted or another request just rotated it.
		inserted, err := s.blacklist.Add(ctx, blacklistEntry(claims, s.timeFunc()))
		if err != nil {
			return nil, fmt.Errorf("failed to blacklist rotated token: %w", err)
		}
		if !inserted {
			log.Info("rejected blacklisted refresh token", slog.String("user_id", claims.UserID.String()))
			return nil, ErrTokenBlacklisted
		}
	} else {
		blacklisted, err := s.blacklist.Contains(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token blacklist: %w", err)
		}
		if blacklisted {
			log.Info("rejected blacklisted refresh token", slog.String("user_id", claims.UserID.String()))
			return nil, ErrTokenBlacklisted
		}
	}

	if !s.rotate {
		access, accessExp, err := s.sign(ctx, claims.UserID, TokenTypeAccess, s.timeFunc(), s.accessLifetime)
		if err != nil {
			return nil, err
		}
		return &TokenPair{
			AccessToken:      access,
			RefreshToken:     refreshToken,
			AccessExpiresAt:  accessExp,
			RefreshExpiresAt: claims.ExpiresAt.Time,
		}, nil
	}

	pair, err := s.Issue(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	log.Debug("refresh token rotated", slog.String("user_id", claims.UserID.String()))
	return pair, nil
}

// Invalidate implements TokenService.Invalidate.
func (s *hmacTokenService) Invalidate(ctx context.Context, refreshToken string) error {
	claims, err := s.parseRefresh(ctx, refreshToken)
	if err != nil {
		// Expired tokens cannot be blacklisted and are reported like any
		// other unusable token.
		if errors.Is(err, ErrExpiredRefreshToken) {
			return fmt.Errorf("%w: %w", ErrInvalidRefreshToken, err)
		}
		return err
	}

	inserted, err := s.blacklist.Add(ctx, blacklistEntry(claims, s.timeFunc()))
	if err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	logger.FromContext(ctx).Info("refresh token invalidated",
		slog.String("user_id", claims.UserID.String()),
		slog.Bool("already_blacklisted", !inserted))
	return nil
}

// PurgeBlacklist implements TokenService.PurgeBlacklist.
func (s *hmacTokenService) PurgeBlacklist(ctx context.Context) (int64, error) {
	// Tokens stay valid until exp + clockSkew, so their entries must too.
	cutoff := s.timeFunc().Add(-s.clockSkew).UTC()
	removed, err := s.blacklist.PurgeExpired(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge token blacklist: %w", err)
	}
	return removed, nil
}

// ValidateAccessToken implements TokenService.ValidateAccessToken.
func (s *hmacTokenService) ValidateAccessToken(ctx context.Context, accessToken string) (*Claims, error) {
	log := logger.FromContext(ctx)

	claims, err := s.parse(accessToken)
	if err != nil {
		log.Debug("access token validation failed",
			slog.String("error", redact.Error(err)),
			slog.String("token_type", TokenTypeAccess))
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}
	if claims.TokenType != TokenTypeAccess {
		log.Debug("access token validation failed: wrong token type",
			slog.String("actual", claims.TokenType))
		return nil, ErrWrongTokenType
	}

	return &Claims{
		UserID:    claims.UserID,
		TokenType: claims.TokenType,
		Subject:   claims.Subject,
		IssuedAt:  numericTime(claims.IssuedAt),
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}, nil
}

func numericTime(d *jwt.NumericDate) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}
