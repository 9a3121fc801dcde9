package repositories_test

import (
	"context"
	"io"
	"testing"

	"github.com/myrjola/ikigai/internal/models"
	"github.com/myrjola/ikigai/internal/repositories"
	"github.com/myrjola/ikigai/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMentorRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := repositories.NewMentorRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	mentors, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, mentors, 3, "fixtures seed the roster")
	assert.Equal(t, "mentor-aiko", mentors[0].ID)

	created, err := repo.Create(ctx, models.Mentor{Name: "Zed", Ordering: 0}) //nolint:exhaustruct // optional fields.
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	created.Title = "Coach"
	require.NoError(t, repo.Update(ctx, created))
	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	mentors, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, created.ID, mentors[0].ID, "ordered by ordering")

	_, err = repo.Create(ctx, created)
	require.ErrorIs(t, err, models.ErrConflict)

	require.NoError(t, repo.Delete(ctx, created.ID))
	require.ErrorIs(t, repo.Update(ctx, created), models.ErrNotFound)
	_, err = repo.Get(ctx, created.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
}
