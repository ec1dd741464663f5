package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/techbyhenry/acode-api/internal/domain"
	"github.com/techbyhenry/acode-api/internal/platform/logger"
	"github.com/techbyhenry/acode-api/internal/store"
)

// PasswordHashVerifier both hashes and checks passwords.
type PasswordHashVerifier interface {
	PasswordHasher
	PasswordVerifier
}

// Credentials creates users and verifies their passwords.
type Credentials struct {
	users           store.UserStore
	passwords       PasswordHashVerifier
	policy          *PasswordPolicy
	db              *sql.DB
	updateLastLogin bool
	timeFunc        func() time.Time
	logger          *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// CredentialsOption customizes Credentials.
type CredentialsOption func(*Credentials)

// WithTransactions makes multi-step operations (Elevate) run inside a
// single database transaction on db.
func WithTransactions(db *sql.DB) CredentialsOption {
	return func(c *Credentials) { c.db = db }
}

// WithLastLoginUpdates records the login time on every successful Verify.
func WithLastLoginUpdates(enabled bool) CredentialsOption {
	return func(c *Credentials) { c.updateLastLogin = enabled }
}

// WithCredentialsClock replaces the clock used for last-login timestamps.
func WithCredentialsClock(f func() time.Time) CredentialsOption {
	return func(c *Credentials) { c.timeFunc = f }
}

// NewCredentials creates a Credentials. A nil logger falls back to
// slog.Default().
func NewCredentials(
	users store.UserStore,
	passwords PasswordHashVerifier,
	policy *PasswordPolicy,
	logger *slog.Logger,
	opts ...CredentialsOption,
) *Credentials {
	if logger == nil {
		logger = slog.Default()
	}
	if policy == nil {
		policy = NewPasswordPolicy(DefaultPasswordMinLength)
	}
	c := &Credentials{
		users:     users,
		passwords: passwords,
		policy:    policy,
		timeFunc:  time.Now,
		logger:    logger.With(slog.String("component", "credentials")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create registers an ordinary user. It fails with a joined set of
// *domain.ValidationError / *domain.PasswordPolicyError values when the input
// is invalid, and with store.ErrEmailExists when the normalized email is
// taken.
func (c *Credentials) Create(ctx context.Context, email, password string) (*domain.User, error) {
	return c.create(ctx, email, password, false)
}

// CreateSuperuser registers a user with is_staff and is_superuser set.
// Normal registration never grants these flags.
func (c *Credentials) CreateSuperuser(ctx context.Context, email, password string) (*domain.User, error) {
	return c.create(ctx, email, password, true)
}

func (c *Credentials) create(ctx context.Context, email, password string, privileged bool) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	normalized := domain.NormalizeEmail(email)

	var errs []error
	if err := domain.ValidateEmail(normalized); err != nil {
		errs = append(errs, err)
	}
	if password == "" {
		errs = append(errs, domain.NewValidationError("password", "This field may not be blank.", domain.ErrInvalidPassword))
	} else if err := c.policy.Validate(password, PasswordAttribute{Name: "email", Value: normalized}); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	hashed, err := c.passwords.Hash(password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, err
	}

	user, err := domain.NewUser(normalized, hashed)
	if err != nil {
		return nil, err
	}
	user.IsStaff = privileged
	user.IsSuperuser = privileged

	if err := c.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user registered",
		slog.String("user_id", user.ID.String()),
		slog.Bool("is_superuser", privileged))
	return user, nil
}

// Verify checks email and password. Unknown email, wrong password and
// inactive account all return ErrInvalidCredentials; an unknown email still
// pays for one bcrypt comparison.
func (c *Credentials) Verify(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	user, err := c.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			_ = c.passwords.Compare(c.dummyPasswordHash(), password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := c.passwords.Compare(user.HashedPassword, password); err != nil {
		log.Debug("password mismatch", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		log.Info("login attempt for inactive user", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	if c.updateLastLogin {
		now := c.timeFunc().UTC()
		if err := c.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
			// The login itself succeeded; a stale last_login is not worth failing it.
			log.Warn("failed to record last login",
				slog.String("user_id", user.ID.String()),
				slog.String("error", err.Error()))
		} else {
			user.LastLogin = &now
		}
	}
	return user, nil
}

// Elevate grants is_staff and is_superuser to an existing user.
func (c *Credentials) Elevate(ctx context.Context, email string) (*domain.User, error) {
	var elevated *domain.User

	run := func(ctx context.Context, users store.UserStore) error {
		user, err := users.GetByEmail(ctx, domain.NormalizeEmail(email))
		if err != nil {
			return err
		}
		if err := users.SetPrivileges(ctx, user.ID, true, true); err != nil {
			return err
		}
		user.IsStaff, user.IsSuperuser = true, true
		elevated = user
		return nil
	}

	var err error
	if c.db != nil {
		err = store.RunInTransaction(ctx, c.db, func(ctx context.Context, tx *sql.Tx) error {
			return run(ctx, c.users.WithTx(tx))
		})
	} else {
		err = run(ctx, c.users)
	}
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, c.logger).Info("user elevated to superuser",
		slog.String("user_id", elevated.ID.String()))
	return elevated, nil
}

func (c *Credentials) dummyPasswordHash() string {
	c.dummyOnce.Do(func() {
		h, err := c.passwords.Hash(uuid.NewString())
		if err == nil {
			c.dummyHash = h
		}
	})
	return c.dummyHash
}
