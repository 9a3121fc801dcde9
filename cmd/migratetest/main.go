package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/logging"
	"github.com/myrjola/ikigai/internal/sqlite"
)

// main applies the schema to a copy of the production database and prints the row counts as a smoke test.
func main() {
	logger := logging.NewLogger(os.Stdout, slog.LevelDebug)
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds

	if sqliteURL, ok = os.LookupEnv("IKIGAI_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "IKIGAI_SQLITE_URL not set")
		os.Exit(1)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		os.Exit(1)
	}

	for _, table := range []string{"accounts", "profiles", "mentors", "contact_messages", "sessions"} {
		var count int
		if err = db.ReadOnly.GetContext(ctx, &count, `SELECT COUNT(*) FROM `+table); err != nil {
			logger.LogAttrs(ctx, slog.LevelError, "error counting rows",
				slog.String("table", table), errors.SlogError(err))
			os.Exit(1)
		}
		logger.LogAttrs(ctx, slog.LevelInfo, "row count", slog.String("table", table), slog.Int("count", count))
	}

	// Profiles are JSON documents, every one of them has to decode after the migration.
	var invalid int
	if err = db.ReadOnly.GetContext(ctx, &invalid,
		`SELECT COUNT(*) FROM profiles WHERE NOT json_valid(document)`); err != nil || invalid > 0 {
		logger.LogAttrs(ctx, slog.LevelError, "invalid profile documents", slog.Int("count", invalid),
			errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
	cancel()
	if err = db.Close(); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error closing database", errors.SlogError(err))
	}
	os.Exit(0)
}
