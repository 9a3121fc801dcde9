package sqlite

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/myrjola/ikigai/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestDatabase_DeleteExpiredSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := NewDatabase(ctx, ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ReadWrite.ExecContext(ctx, `INSERT INTO sessions (token, data, expiry) VALUES
    ('expired', x'00', julianday('now', '-1 hour')),
    ('valid', x'00', julianday('now', '+1 hour'))`)
	require.NoError(t, err)

	removed, err := db.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	var tokens []string
	require.NoError(t, db.ReadOnly.SelectContext(ctx, &tokens, "SELECT token FROM sessions"))
	require.Equal(t, []string{"valid"}, tokens)
}

func TestDatabase_StartDatabaseOptimizer(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	db, err := NewDatabase(ctx, ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ReadWrite.ExecContext(ctx,
		"INSERT INTO sessions (token, data, expiry) VALUES ('expired', x'00', julianday('now', '-1 hour'))")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		db.StartDatabaseOptimizer(ctx, time.Hour)
	}()

	require.Eventually(t, func() bool {
		var count int
		return db.ReadOnly.GetContext(ctx, &count, "SELECT COUNT(*) FROM sessions") == nil && count == 0
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("optimizer did not stop after cancellation")
	}
}
