package profile_test

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/localstore"
	"github.com/myrjola/ikigai/internal/models"
	"github.com/myrjola/ikigai/internal/profile"
	"github.com/myrjola/ikigai/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *localstore.ProfileStore {
	t.Helper()
	store, err := localstore.Open("", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	return localstore.NewProfileStore(store)
}

func newAggregator(t *testing.T, store profile.Store, cacheSize int) *profile.Aggregator {
	t.Helper()
	a, err := profile.New(store, profile.Options{CacheSize: cacheSize}, testhelpers.NewLogger(io.Discard)) //nolint:exhaustruct // defaults.
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestAggregator_MergeAndSave_overwritesOnConflict(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	a := newAggregator(t, store, 0)

	archetype := &models.ArchetypeResult{Archetype: "The Sage"}                    //nolint:exhaustruct // optional fields.
	_, err := a.MergeAndSave(ctx, "u1", models.ProfilePatch{Archetype: archetype}) //nolint:exhaustruct // partial patch.
	require.NoError(t, err)
	_, err = a.MergeAndSave(ctx, "u1", models.ProfilePatch{ //nolint:exhaustruct // partial patch.
		Temperament: &models.TemperamentResult{Temperament: "T1", Advice: "old"}, //nolint:exhaustruct // optional fields.
	})
	require.NoError(t, err)
	merged, err := a.MergeAndSave(ctx, "u1", models.ProfilePatch{ //nolint:exhaustruct // partial patch.
		Temperament: &models.TemperamentResult{Temperament: "T2"}, //nolint:exhaustruct // optional fields.
	})
	require.NoError(t, err)

	// The in-memory state is updated before persistence.
	assert.Equal(t, "T2", merged.Temperament.Temperament)
	assert.Empty(t, merged.Temperament.Advice)
	assert.Equal(t, "The Sage", merged.Archetype.Archetype)

	a.Flush()
	stored, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, merged, stored)

	loaded, warnings, err := a.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, merged, loaded)
}

func TestAggregator_Load_readsThroughAfterEviction(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	a := newAggregator(t, store, 1)

	name := "Ada"
	_, err := a.MergeAndSave(ctx, "u1", models.ProfilePatch{Name: &name}) //nolint:exhaustruct // partial patch.
	require.NoError(t, err)
	// Evicts u1 while its write may still be queued.
	_, err = a.MergeAndSave(ctx, "u2", models.ProfilePatch{Name: &name}) //nolint:exhaustruct // partial patch.
	require.NoError(t, err)

	got, _, err := a.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	_, _, err = a.Load(ctx, "nobody")
	require.ErrorIs(t, err, models.ErrNotFound)
}

// failingStore fails every write.
type failingStore struct {
	profile.Store
	mu     sync.Mutex
	merges int
}

func (s *failingStore) Merge(context.Context, string, models.ProfilePatch) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.merges++
	return models.Profile{}, errors.New("disk full") //nolint:exhaustruct // zero value.
}

func TestAggregator_persistFailureIsNonBlockingWarning(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: newStore(t)} //nolint:exhaustruct // zero values.
	a := newAggregator(t, store, 0)

	nickname := &models.NicknameResult{Nickname: "Lighthouse"}                        //nolint:exhaustruct // optional fields.
	merged, err := a.MergeAndSave(ctx, "u1", models.ProfilePatch{Nickname: nickname}) //nolint:exhaustruct // partial patch.
	require.NoError(t, err, "persistence failures do not fail the merge")
	_, err = a.MergeAndSave(ctx, "u1", models.ProfilePatch{Nickname: nickname}) //nolint:exhaustruct // partial patch.
	require.NoError(t, err)
	a.Flush()
	assert.Equal(t, 2, store.merges)

	loaded, warnings, err := a.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, merged, loaded, "in-memory update is not rolled back")
	assert.Equal(t, []string{profile.WarningNotSaved}, warnings)

	_, warnings, err = a.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, warnings, "warnings are reported once")
}

func TestAggregator_Delete(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	a := newAggregator(t, store, 0)

	name := "Ada"
	_, err := a.MergeAndSave(ctx, "u1", models.ProfilePatch{Name: &name}) //nolint:exhaustruct // partial patch.
	require.NoError(t, err)
	require.NoError(t, a.Delete(ctx, "u1"))

	_, _, err = a.Load(ctx, "u1")
	require.ErrorIs(t, err, models.ErrNotFound)
	_, err = store.Get(ctx, "u1")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestAggregator_Close(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	a, err := profile.New(store, profile.Options{}, testhelpers.NewLogger(io.Discard)) //nolint:exhaustruct // defaults.
	require.NoError(t, err)

	name := "Ada"
	for range 100 {
		_, err = a.MergeAndSave(ctx, "u1", models.ProfilePatch{Name: &name}) //nolint:exhaustruct // partial patch.
		require.NoError(t, err)
	}
	a.Close()
	a.Close()

	_, err = store.Get(ctx, "u1")
	require.NoError(t, err, "close drains the queue")
	_, err = a.MergeAndSave(ctx, "u1", models.ProfilePatch{Name: &name}) //nolint:exhaustruct // partial patch.
	require.ErrorIs(t, err, profile.ErrClosed)
}
