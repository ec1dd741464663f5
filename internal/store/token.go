package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BlacklistEntry records a refresh token that may never be used again.
type BlacklistEntry struct {
	TokenID       string // the token's jti claim
	UserID        uuid.UUID
	ExpiresAt     time.Time
	BlacklistedAt time.Time
}

// TokenBlacklistStore persists blacklisted refresh token identifiers.
type TokenBlacklistStore interface {
	// Add inserts entry unless its TokenID is already present. It reports
	// whether this call inserted the row. Check and insert are one atomic
	// step, so of two concurrent calls for the same token exactly one
	// observes true.
	Add(ctx context.Context, entry BlacklistEntry) (bool, error)

	// Contains reports whether tokenID has been blacklisted.
	Contains(ctx context.Context, tokenID string) (bool, error)

	// PurgeExpired deletes entries whose token expired before cutoff and
	// returns how many were removed.
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
