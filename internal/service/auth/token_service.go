package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenService manages signed access/refresh token pairs.
type TokenService interface {
	// Issue signs a fresh access/refresh pair for userID.
	Issue(ctx context.Context, userID uuid.UUID) (*TokenPair, error)

	// Rotate exchanges a refresh token for a new pair. It fails with
	// ErrInvalidRefreshToken, ErrExpiredRefreshToken or ErrTokenBlacklisted.
	// When rotation is enabled together with blacklist-after-rotation, the
	// presented token is blacklisted atomically, so a token replayed
	// concurrently yields at most one new pair.
	Rotate(ctx context.Context, refreshToken string) (*TokenPair, error)

	// Invalidate blacklists a refresh token. Invalidating a token that is
	// already blacklisted succeeds. Any token that cannot be parsed or has
	// expired yields ErrInvalidRefreshToken.
	Invalidate(ctx context.Context, refreshToken string) error

	// ValidateAccessToken verifies an access token and returns its claims.
	ValidateAccessToken(ctx context.Context, accessToken string) (*Claims, error)

	// PurgeBlacklist drops blacklist entries for tokens that validation would
	// reject as expired, clock skew included, and returns how many went.
	PurgeBlacklist(ctx context.Context) (int64, error)
}

// TokenPair is an access token with its paired refresh token.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Claims represents the custom claims structure for the JWT tokens.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// TokenType is "access" or "refresh".
	TokenType string `json:"type,omitempty"`

	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
