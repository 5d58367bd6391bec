// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"log/slog"
	"time"
)

// ExpiredSessionPurger removes sessions whose expiry has passed.
//
// Only the PostgreSQL store needs it; Redis evicts by TTL.
type ExpiredSessionPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// RunSweeper purges expired sessions every interval until ctx is cancelled.
func RunSweeper(ctx context.Context, purger ExpiredSessionPurger, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := purger.DeleteExpired(ctx, now.UTC())
			if err != nil {
				logger.Warn("session_sweep_failed", slog.Any("error", err))
				continue
			}
			if removed > 0 {
				logger.Info("session_sweep_completed", slog.Int64("removed", removed))
			}
		}
	}
}
