package store

import (
	"context"

	"github.com/techbyhenry/acode-api/internal/domain"
)

// AccountStore persists saved bank account records as an append-only log.
type AccountStore interface {
	// Create appends record, assigning its ID and CreatedAt. Duplicates are
	// permitted. Invalid records are rejected before anything is written.
	Create(ctx context.Context, record *domain.AccountRecord) error

	// ListAll returns every record in ascending creation order.
	ListAll(ctx context.Context) ([]*domain.AccountRecord, error)
}
