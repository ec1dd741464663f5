package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/techbyhenry/acode-api/internal/domain"
	"github.com/techbyhenry/acode-api/internal/platform/logger"
	"github.com/techbyhenry/acode-api/internal/store"
)

// PostgresAccountStore implements store.AccountStore.
type PostgresAccountStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAccountStore creates an account store on db.
func NewPostgresAccountStore(db store.DBTX, logger *slog.Logger) *PostgresAccountStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAccountStore{
		db:     db,
		logger: logger.With(slog.String("component", "account_store")),
	}
}

var _ store.AccountStore = (*PostgresAccountStore)(nil)

// Create validates record before touching the database and fills in the
// server-assigned ID and CreatedAt.
func (s *PostgresAccountStore) Create(ctx context.Context, record *domain.AccountRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO saved_accounts (account_number, bank_name, account_holder_name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := s.db.QueryRowContext(ctx, query,
		record.AccountNumber,
		record.BankName,
		record.AccountHolderName,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		log.Error("failed to save account", slog.String("error", err.Error()))
		return store.NewStoreError("account", "create", "insert failed", MapError(err))
	}

	log.Info("account saved", slog.Int64("account_record_id", record.ID))
	return nil
}

// ListAll returns records in ascending creation order. The serial id breaks
// ties between rows created in the same instant.
func (s *PostgresAccountStore) ListAll(ctx context.Context) ([]*domain.AccountRecord, error) {
	query := `
		SELECT id, account_number, bank_name, account_holder_name, created_at
		FROM saved_accounts
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, store.NewStoreError("account", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	records := make([]*domain.AccountRecord, 0)
	for rows.Next() {
		var r domain.AccountRecord
		if err := rows.Scan(&r.ID, &r.AccountNumber, &r.BankName, &r.AccountHolderName, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account record: %w", err)
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("account", "list", "row iteration failed", err)
	}
	return records, nil
}
