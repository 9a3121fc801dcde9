package sqlite

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/ikigai/internal/errors"
)

// StartDatabaseOptimizer runs optimize and removes expired sessions once per interval until ctx is cancelled.
// See https://www.sqlite.org/pragma.html#pragma_optimize.
func (db *Database) StartDatabaseOptimizer(ctx context.Context, interval time.Duration) {
	for {
		start := time.Now()
		if _, err := db.ReadWrite.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
			if ctx.Err() != nil {
				return
			}
			err = errors.Wrap(err, "optimize database")
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to optimize database", errors.SlogError(err))
		} else {
			db.logger.LogAttrs(ctx, slog.LevelInfo, "optimized database",
				slog.Duration("duration", time.Since(start)))
		}
		if removed, err := db.DeleteExpiredSessions(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to delete expired sessions", errors.SlogError(err))
		} else if removed > 0 {
			db.logger.LogAttrs(ctx, slog.LevelDebug, "deleted expired sessions", slog.Int64("count", removed))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
			continue
		}
	}
}

// DeleteExpiredSessions removes session rows whose expiry has passed. The session store runs without its own
// cleanup goroutine so that closing the database never races with it.
func (db *Database) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := db.ReadWrite.ExecContext(ctx, "DELETE FROM sessions WHERE expiry < julianday('now')")
	if err != nil {
		return 0, errors.Wrap(err, "delete expired sessions")
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "rows affected")
	}
	return removed, nil
}
