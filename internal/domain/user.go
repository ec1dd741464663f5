package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an account holder identified by email.
type User struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	HashedPassword string     `json:"-"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	IsActive       bool       `json:"is_active"`
	IsStaff        bool       `json:"is_staff"`
	IsSuperuser    bool       `json:"is_superuser"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NormalizeEmail trims surrounding whitespace and case-folds the address.
// Uniqueness is enforced on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that email is a bare address without a display name.
func ValidateEmail(email string) error {
	if email == "" {
		return NewValidationError("email", "This field may not be blank.", ErrInvalidEmail)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return NewValidationError("email", "Enter a valid email address.", ErrInvalidEmail)
	}
	host := email[strings.LastIndex(email, "@")+1:]
	if !strings.Contains(host, ".") || strings.HasSuffix(host, ".") {
		return NewValidationError("email", "Enter a valid email address.", ErrInvalidEmail)
	}
	return nil
}

// NewUser creates an active, unprivileged user with a normalized email.
// The caller supplies an already-hashed password; plaintext never lives on
// the entity.
func NewUser(email, hashedPassword string) (*User, error) {
	normalized := NormalizeEmail(email)
	if err := ValidateEmail(normalized); err != nil {
		return nil, err
	}
	if hashedPassword == "" {
		return nil, NewValidationError("password", "This field may not be blank.", ErrInvalidPassword)
	}

	now := time.Now().UTC()
	return &User{
		ID:             uuid.New(),
		Email:          normalized,
		HashedPassword: hashedPassword,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
