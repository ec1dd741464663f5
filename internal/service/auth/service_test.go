package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techbyhenry/acode-api/internal/domain"
	"github.com/techbyhenry/acode-api/internal/mocks"
	"github.com/techbyhenry/acode-api/internal/store"
)

type serviceFixture struct {
	svc       *Service
	users     *mocks.MockUserStore
	blacklist *mocks.MockTokenBlacklistStore
	tokens    TokenService
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	users := mocks.NewMockUserStore()
	blacklist := mocks.NewMockTokenBlacklistStore()
	tokens, err := NewTokenService(testAuthConfig(), blacklist)
	require.NoError(t, err)
	creds := NewCredentials(users, NewBcryptHasher(4), NewPasswordPolicy(8), nil, WithLastLoginUpdates(true))
	return serviceFixture{
		svc:       NewService(creds, tokens, nil),
		users:     users,
		blacklist: blacklist,
		tokens:    tokens,
	}
}

func TestRegisterLoginLogoutScenario(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	ctx := context.Background()

	user, signupPair, err := f.svc.Register(ctx, "alice@x.com", "Secret123!", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", user.Email)
	assert.NotEmpty(t, signupPair.AccessToken)
	assert.NotEmpty(t, signupPair.RefreshToken)

	_, loginPair, err := f.svc.Login(ctx, "alice@x.com", "Secret123!")
	require.NoError(t, err)
	assert.NotEqual(t, signupPair.AccessToken, loginPair.AccessToken)
	assert.NotEqual(t, signupPair.RefreshToken, loginPair.RefreshToken)
	assert.True(t, loginPair.AccessExpiresAt.Before(loginPair.RefreshExpiresAt))

	require.NoError(t, f.svc.Logout(ctx, loginPair.RefreshToken))
	require.NoError(t, f.svc.Logout(ctx, loginPair.RefreshToken), "second logout still succeeds")

	_, err = f.svc.Refresh(ctx, loginPair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenBlacklisted)

	_, err = f.svc.Refresh(ctx, signupPair.RefreshToken)
	assert.NoError(t, err, "logging out one session leaves the other alone")
}

func TestRegisterPasswordMismatchSkipsStore(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)

	_, _, err := f.svc.Register(context.Background(), "alice@x.com", "Secret123!", "Secret123?")
	assert.ErrorIs(t, err, domain.ErrPasswordMismatch)
	assert.Equal(t, []string{"Password fields didn't match."}, domain.FieldErrors(err)["password"])
	assert.Zero(t, f.users.CreateCalls())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Register(ctx, "alice@x.com", "Secret123!", "Secret123!")
	require.NoError(t, err)

	_, pair, err := f.svc.Register(ctx, " Alice@X.COM", "Secret123!", "Secret123!")
	assert.ErrorIs(t, err, store.ErrEmailExists)
	assert.Nil(t, pair)
}

func TestConcurrentRegistrationSameEmail(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dupes     int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.svc.Register(context.Background(), "race@x.com", "Secret123!", "Secret123!")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, store.ErrEmailExists):
				dupes++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, dupes)
}

func TestLoginFailuresIssueNoTokens(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	ctx := context.Background()
	_, _, err := f.svc.Register(ctx, "alice@x.com", "Secret123!", "Secret123!")
	require.NoError(t, err)

	user, pair, err := f.svc.Login(ctx, "alice@x.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, user)
	assert.Nil(t, pair)

	_, pair, err = f.svc.Login(ctx, "bob@x.com", "Secret123!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, pair)
}

func TestLogoutInputErrors(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.Logout(ctx, ""), ErrInvalidRefreshToken)
	assert.ErrorIs(t, f.svc.Logout(ctx, "definitely.not.ajwt"), ErrInvalidRefreshToken)

	_, pair, err := f.svc.Register(ctx, "alice@x.com", "Secret123!", "Secret123!")
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.Logout(ctx, pair.AccessToken), ErrInvalidRefreshToken)
}

func TestLogoutStoreFailureIsInternal(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	ctx := context.Background()
	_, pair, err := f.svc.Register(ctx, "alice@x.com", "Secret123!", "Secret123!")
	require.NoError(t, err)

	boom := errors.New("database down")
	f.blacklist.AddFn = func(ctx context.Context, entry store.BlacklistEntry) (bool, error) {
		return false, boom
	}
	err = f.svc.Logout(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshRotates(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	ctx := context.Background()
	_, pair, err := f.svc.Register(ctx, "alice@x.com", "Secret123!", "Secret123!")
	require.NoError(t, err)

	next, err := f.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenBlacklisted)

	_, err = f.svc.Refresh(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}
