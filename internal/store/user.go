package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/techbyhenry/acode-api/internal/domain"
)

// UserStore defines persistence for user identities.
type UserStore interface {
	// Create inserts a new user. Uniqueness of the normalized email is
	// enforced by the store atomically; a concurrent duplicate returns
	// ErrEmailExists.
	Create(ctx context.Context, user *domain.User) error

	// GetByID returns ErrUserNotFound if no user has the id.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail looks up by normalized email. Returns ErrUserNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// SetPrivileges sets the administrative flags of an existing user.
	// Returns ErrUserNotFound if the user does not exist.
	SetPrivileges(ctx context.Context, id uuid.UUID, isStaff, isSuperuser bool) error

	// UpdateLastLogin records a successful login time.
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	// WithTx returns a UserStore bound to tx.
	WithTx(tx *sql.Tx) UserStore
}
