package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techbyhenry/acode-api/internal/config"
	"github.com/techbyhenry/acode-api/internal/mocks"
	"github.com/techbyhenry/acode-api/internal/store"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   testSecret,
		AccessTokenLifetimeMinutes:  5,
		RefreshTokenLifetimeMinutes: 1440,
		RotateRefreshTokens:         true,
		BlacklistAfterRotation:      true,
		BcryptCost:                  4,
		PasswordMinLength:           8,
		UpdateLastLogin:             true,
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestTokenService(t *testing.T, cfg config.AuthConfig, clock *fakeClock) (TokenService, *mocks.MockTokenBlacklistStore) {
	t.Helper()
	blacklist := mocks.NewMockTokenBlacklistStore()
	svc, err := NewTokenService(cfg, blacklist, WithTimeFunc(clock.Now))
	require.NoError(t, err)
	return svc, blacklist
}

func TestNewTokenServiceRejectsBadConfig(t *testing.T) {
	t.Parallel()

	short := testAuthConfig()
	short.JWTSecret = "too-short"
	_, err := NewTokenService(short, mocks.NewMockTokenBlacklistStore())
	assert.Error(t, err)

	inverted := testAuthConfig()
	inverted.AccessTokenLifetimeMinutes = 60
	inverted.RefreshTokenLifetimeMinutes = 60
	_, err = NewTokenService(inverted, mocks.NewMockTokenBlacklistStore())
	assert.Error(t, err)

	_, err = NewTokenService(testAuthConfig(), nil)
	assert.Error(t, err)
}

func TestIssue(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	svc, _ := newTestTokenService(t, testAuthConfig(), clock)
	userID := uuid.New()

	pair, err := svc.Issue(context.Background(), userID)
	require.NoError(t, err)

	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.True(t, pair.AccessExpiresAt.Before(pair.RefreshExpiresAt))
	assert.Equal(t, clock.Now().Add(5*time.Minute), pair.AccessExpiresAt)
	assert.Equal(t, clock.Now().Add(24*time.Hour), pair.RefreshExpiresAt)

	claims, err := svc.ValidateAccessToken(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)

	again, err := svc.Issue(context.Background(), userID)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, again.RefreshToken, "every pair carries a fresh jti")
}

func TestValidateAccessToken(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	tests := []struct {
		name    string
		token   func(t *testing.T) (TokenService, string)
		wantErr error
	}{
		{
			name: "expired",
			token: func(t *testing.T) (TokenService, string) {
				clock := newFakeClock()
				svc, _ := newTestTokenService(t, testAuthConfig(), clock)
				pair, err := svc.Issue(context.Background(), userID)
				require.NoError(t, err)
				clock.Advance(6 * time.Minute)
				return svc, pair.AccessToken
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "wrong signature",
			token: func(t *testing.T) (TokenService, string) {
				other := testAuthConfig()
				other.JWTSecret = "another-secret-that-is-long-enough-for-tests"
				signer, _ := newTestTokenService(t, other, newFakeClock())
				pair, err := signer.Issue(context.Background(), userID)
				require.NoError(t, err)
				svc, _ := newTestTokenService(t, testAuthConfig(), newFakeClock())
				return svc, pair.AccessToken
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "malformed",
			token: func(t *testing.T) (TokenService, string) {
				svc, _ := newTestTokenService(t, testAuthConfig(), newFakeClock())
				return svc, "not-a-jwt"
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "refresh token used as access token",
			token: func(t *testing.T) (TokenService, string) {
				svc, _ := newTestTokenService(t, testAuthConfig(), newFakeClock())
				pair, err := svc.Issue(context.Background(), userID)
				require.NoError(t, err)
				return svc, pair.RefreshToken
			},
			wantErr: ErrWrongTokenType,
		},
		{
			name: "none algorithm",
			token: func(t *testing.T) (TokenService, string) {
				svc, _ := newTestTokenService(t, testAuthConfig(), newFakeClock())
				claims := jwtCustomClaims{
					UserID:    userID,
					TokenType: TokenTypeAccess,
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
						ID:        uuid.NewString(),
					},
				}
				tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				return svc, tok
			},
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, token := tt.token(t)
			_, err := svc.ValidateAccessToken(context.Background(), token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClockSkewAllowsGrace(t *testing.T) {
	t.Parallel()
	cfg := testAuthConfig()
	cfg.ClockSkewSeconds = 120
	clock := newFakeClock()
	svc, _ := newTestTokenService(t, cfg, clock)

	pair, err := svc.Issue(context.Background(), uuid.New())
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)
	_, err = svc.ValidateAccessToken(context.Background(), pair.AccessToken)
	assert.NoError(t, err, "one minute past expiry is inside the two minute skew")

	clock.Advance(2 * time.Minute)
	_, err = svc.ValidateAccessToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestPurgeBlacklistKeepsEntriesInsideClockSkew(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := testAuthConfig()
	cfg.ClockSkewSeconds = 600
	clock := newFakeClock()
	svc, blacklist := newTestTokenService(t, cfg, clock)

	pair, err := svc.Issue(ctx, uuid.New())
	require.NoError(t, err)
	require.NoError(t, svc.Invalidate(ctx, pair.RefreshToken))

	clock.Advance(cfg.RefreshTokenLifetime() + time.Minute)
	removed, err := svc.PurgeBlacklist(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed, "the token still validates within the skew")
	assert.Equal(t, 1, blacklist.Len())

	_, err = svc.Rotate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenBlacklisted)

	clock.Advance(cfg.ClockSkew())
	removed, err = svc.PurgeBlacklist(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = svc.Rotate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrExpiredRefreshToken)
}

func TestPurgeBlacklistWrapsStoreErrors(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	svc, blacklist := newTestTokenService(t, testAuthConfig(), clock)
	var gotCutoff time.Time
	blacklist.PurgeExpiredFn = func(_ context.Context, cutoff time.Time) (int64, error) {
		gotCutoff = cutoff
		return 0, errors.New("connection refused")
	}

	_, err := svc.PurgeBlacklist(context.Background())
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, clock.Now(), gotCutoff)
}

func TestRotate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rotation blacklists the presented token", func(t *testing.T) {
		clock := newFakeClock()
		svc, blacklist := newTestTokenService(t, testAuthConfig(), clock)
		userID := uuid.New()
		pair, err := svc.Issue(ctx, userID)
		require.NoError(t, err)

		next, err := svc.Rotate(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)
		assert.Equal(t, 1, blacklist.Len())

		claims, err := svc.ValidateAccessToken(ctx, next.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)

		_, err = svc.Rotate(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, ErrTokenBlacklisted)

		_, err = svc.Rotate(ctx, next.RefreshToken)
		assert.NoError(t, err, "the rotated-in token is usable once")
	})

	t.Run("expired refresh token", func(t *testing.T) {
		clock := newFakeClock()
		svc, blacklist := newTestTokenService(t, testAuthConfig(), clock)
		pair, err := svc.Issue(ctx, uuid.New())
		require.NoError(t, err)

		clock.Advance(25 * time.Hour)
		_, err = svc.Rotate(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, ErrExpiredRefreshToken)
		assert.Zero(t, blacklist.Len())
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		svc, _ := newTestTokenService(t, testAuthConfig(), newFakeClock())
		pair, err := svc.Issue(ctx, uuid.New())
		require.NoError(t, err)

		_, err = svc.Rotate(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})

	t.Run("garbage", func(t *testing.T) {
		svc, _ := newTestTokenService(t, testAuthConfig(), newFakeClock())
		_, err := svc.Rotate(ctx, "garbage")
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("rotation disabled returns the same refresh token", func(t *testing.T) {
		cfg := testAuthConfig()
		cfg.RotateRefreshTokens = false
		svc, blacklist := newTestTokenService(t, cfg, newFakeClock())
		pair, err := svc.Issue(ctx, uuid.New())
		require.NoError(t, err)

		next, err := svc.Rotate(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, pair.RefreshToken, next.RefreshToken)
		assert.NotEmpty(t, next.AccessToken)
		assert.Equal(t, pair.RefreshExpiresAt.Unix(), next.RefreshExpiresAt.Unix())
		assert.Zero(t, blacklist.Len())
	})

	t.Run("rotation without blacklisting keeps the old token usable", func(t *testing.T) {
		cfg := testAuthConfig()
		cfg.BlacklistAfterRotation = false
		svc, blacklist := newTestTokenService(t, cfg, newFakeClock())
		pair, err := svc.Issue(ctx, uuid.New())
		require.NoError(t, err)

		_, err = svc.Rotate(ctx, pair.RefreshToken)
		require.NoError(t, err)
		_, err = svc.Rotate(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.Zero(t, blacklist.Len())

		require.NoError(t, svc.Invalidate(ctx, pair.RefreshToken))
		_, err = svc.Rotate(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, ErrTokenBlacklisted)
	})

	t.Run("blacklist failure is an internal error", func(t *testing.T) {
		svc, blacklist := newTestTokenService(t, testAuthConfig(), newFakeClock())
		boom := errors.New("database down")
		blacklist.AddFn = func(ctx context.Context, entry store.BlacklistEntry) (bool, error) {
			return false, boom
		}
		pair, err := svc.Issue(ctx, uuid.New())
		require.NoError(t, err)

		_, err = svc.Rotate(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrTokenBlacklisted)
	})
}

func TestRotateConcurrentReplayYieldsOneSuccess(t *testing.T) {
	t.Parallel()
	svc, _ := newTestTokenService(t, testAuthConfig(), newFakeClock())
	pair, err := svc.Issue(context.Background(), uuid.New())
	require.NoError(t, err)

	const attempts = 16
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		successes   int
		blacklisted int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Rotate(context.Background(), pair.RefreshToken)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if errors.Is(err, ErrTokenBlacklisted) {
				blacklisted++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, blacklisted)
}

func TestInvalidate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := newFakeClock()
	svc, blacklist := newTestTokenService(t, testAuthConfig(), clock)

	pair, err := svc.Issue(ctx, uuid.New())
	require.NoError(t, err)

	require.NoError(t, svc.Invalidate(ctx, pair.RefreshToken))
	require.NoError(t, svc.Invalidate(ctx, pair.RefreshToken), "invalidation is idempotent")
	assert.Equal(t, 1, blacklist.Len())

	_, err = svc.Rotate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenBlacklisted)

	assert.ErrorIs(t, svc.Invalidate(ctx, "not-a-token"), ErrInvalidRefreshToken)
	assert.ErrorIs(t, svc.Invalidate(ctx, pair.AccessToken), ErrInvalidRefreshToken)

	other, err := svc.Issue(ctx, uuid.New())
	require.NoError(t, err)
	clock.Advance(48 * time.Hour)
	assert.ErrorIs(t, svc.Invalidate(ctx, other.RefreshToken), ErrInvalidRefreshToken)
}
