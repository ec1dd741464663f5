package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/techbyhenry/acode-api/internal/redact"
)

const blacklistPurgeInterval = time.Hour

// blacklistPurger drops blacklist entries whose tokens can no longer pass
// validation. auth.TokenService implements it.
type blacklistPurger interface {
	PurgeBlacklist(ctx context.Context) (int64, error)
}

// runBlacklistPurge purges the token blacklist once immediately and then
// every interval until ctx is done.
func runBlacklistPurge(ctx context.Context, purger blacklistPurger, interval time.Duration, logger *slog.Logger) {
	log := logger.With(slog.String("component", "blacklist_purge"))

	purgeOnce(ctx, purger, log)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purgeOnce(ctx, purger, log)
		}
	}
}

func purgeOnce(ctx context.Context, purger blacklistPurger, log *slog.Logger) {
	removed, err := purger.PurgeBlacklist(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Error("failed to purge expired blacklist entries", slog.String("error", redact.Error(err)))
		}
		return
	}
	if removed > 0 {
		log.Info("purged expired blacklist entries", slog.Int64("removed", removed))
	}
}
