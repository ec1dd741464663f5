package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/techbyhenry/acode-api/internal/platform/logger"
	"github.com/techbyhenry/acode-api/internal/store"
)

// PostgresTokenBlacklistStore implements store.TokenBlacklistStore.
type PostgresTokenBlacklistStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTokenBlacklistStore creates a blacklist store on db.
func NewPostgresTokenBlacklistStore(db store.DBTX, logger *slog.Logger) *PostgresTokenBlacklistStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTokenBlacklistStore{
		db:     db,
		logger: logger.With(slog.String("component", "token_blacklist_store")),
	}
}

var _ store.TokenBlacklistStore = (*PostgresTokenBlacklistStore)(nil)

// Add relies on the jti primary key: ON CONFLICT DO NOTHING makes the
// check and the insert a single statement, so only one caller can see a row
// inserted for a given token.
func (s *PostgresTokenBlacklistStore) Add(ctx context.Context, entry store.BlacklistEntry) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	blacklistedAt := entry.BlacklistedAt
	if blacklistedAt.IsZero() {
		blacklistedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO token_blacklist (jti, user_id, expires_at, blacklisted_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (jti) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query, entry.TokenID, entry.UserID, entry.ExpiresAt.UTC(), blacklistedAt)
	if err != nil {
		log.Error("failed to blacklist token",
			slog.String("user_id", entry.UserID.String()),
			slog.String("error", err.Error()))
		return false, store.NewStoreError("token_blacklist", "add", "insert failed", MapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, store.NewStoreError("token_blacklist", "add", "rows affected unavailable", err)
	}
	return n == 1, nil
}

// Contains implements store.TokenBlacklistStore.Contains.
func (s *PostgresTokenBlacklistStore) Contains(ctx context.Context, tokenID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE jti = $1)`, tokenID,
	).Scan(&exists)
	if err != nil {
		return false, store.NewStoreError("token_blacklist", "contains", "query failed", MapError(err))
	}
	return exists, nil
}

// PurgeExpired implements store.TokenBlacklistStore.PurgeExpired.
func (s *PostgresTokenBlacklistStore) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM token_blacklist WHERE expires_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, store.NewStoreError("token_blacklist", "purge", "delete failed", MapError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("token_blacklist", "purge", "rows affected unavailable", err)
	}
	if n > 0 {
		log.Info("purged expired blacklist entries", slog.Int64("count", n))
	}
	return n, nil
}
