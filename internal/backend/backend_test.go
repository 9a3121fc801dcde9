package backend_test

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/myrjola/ikigai/internal/backend"
	"github.com/myrjola/ikigai/internal/models"
	"github.com/myrjola/ikigai/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Parallel()
	unreachable := filepath.Join(t.TempDir(), "missing", "dir", "db.sqlite")
	tests := []struct {
		name     string
		cfg      backend.Config
		wantKind string
		wantErr  bool
	}{
		{
			name:     "sqlite",
			cfg:      backend.Config{Kind: backend.KindSQLite, SQLiteURL: ":memory:"}, //nolint:exhaustruct // defaults.
			wantKind: backend.KindSQLite,
		},
		{
			name:     "local",
			cfg:      backend.Config{Kind: backend.KindLocal, DataDir: t.TempDir()}, //nolint:exhaustruct // defaults.
			wantKind: backend.KindLocal,
		},
		{
			name:    "sqlite unavailable without fallback",
			cfg:     backend.Config{Kind: backend.KindSQLite, SQLiteURL: unreachable}, //nolint:exhaustruct // defaults.
			wantErr: true,
		},
		{
			name: "sqlite unavailable with fallback",
			cfg: backend.Config{ //nolint:exhaustruct // defaults.
				Kind: backend.KindSQLite, SQLiteURL: unreachable, Fallback: true,
			},
			wantKind: backend.KindLocal,
		},
		{
			name:    "unknown",
			cfg:     backend.Config{Kind: "firestore"}, //nolint:exhaustruct // defaults.
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			b, err := backend.Open(ctx, tt.cfg, testhelpers.NewLogger(io.Discard))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { require.NoError(t, b.Close()) })
			assert.Equal(t, tt.wantKind, b.Kind)
			require.NoError(t, b.Ping(ctx))

			// Both implementations honour the same store contract.
			name := "Ada"
			_, err = b.Profiles.Merge(ctx, "u1", models.ProfilePatch{Name: &name}) //nolint:exhaustruct // partial patch.
			require.NoError(t, err)
			got, err := b.Profiles.Get(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, "Ada", got.Name)

			require.NoError(t, b.Sessions.Commit("token", []byte("x"), time.Now().Add(time.Hour)))
			data, found, err := b.Sessions.Find("token")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, []byte("x"), data)
		})
	}
}

func TestBackend_Maintain(t *testing.T) {
	t.Parallel()
	for _, cfg := range []backend.Config{
		{Kind: backend.KindSQLite, SQLiteURL: ":memory:", OptimizeInterval: time.Hour}, //nolint:exhaustruct // defaults.
		{Kind: backend.KindLocal}, //nolint:exhaustruct // defaults.
	} {
		t.Run(cfg.Kind, func(t *testing.T) {
			t.Parallel()
			ctx, cancel := context.WithCancel(context.Background())
			b, err := backend.Open(ctx, cfg, testhelpers.NewLogger(io.Discard))
			require.NoError(t, err)

			done := make(chan struct{})
			go func() {
				defer close(done)
				b.Maintain(ctx)
			}()
			cancel()
			select {
			case <-done:
			case <-time.After(5 * time.Second):
				t.Fatal("maintenance did not stop after cancellation")
			}
			require.NoError(t, b.Close())
		})
	}
}
