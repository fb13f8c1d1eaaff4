package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/store"
	"github.com/spec-kit/support-desk/pkg/util"
)

func newRatingRepo(t *testing.T) *RatingRepository {
	t.Helper()
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return NewRatingRepository(fs, zap.NewNop())
}

func testRating(value int) domain.Rating {
	staffID := "s1"
	staffName := "sam"
	return domain.Rating{
		TicketID:  7,
		UserID:    "u1",
		Username:  "alice",
		Value:     value,
		StaffID:   &staffID,
		StaffName: &staffName,
	}
}

func TestSubmitThenSingleEdit(t *testing.T) {
	repo := newRatingRepo(t)
	ctx := context.Background()

	first, err := repo.Submit(ctx, testRating(3))
	require.NoError(t, err)
	assert.Equal(t, 3, first.Value)
	assert.True(t, first.Editable)
	assert.Nil(t, first.EditedAt)
	assert.False(t, first.CreatedAt.IsZero())

	edited, err := repo.Submit(ctx, testRating(5))
	require.NoError(t, err)
	assert.Equal(t, 5, edited.Value)
	assert.False(t, edited.Editable)
	require.NotNil(t, edited.EditedAt)
	assert.Equal(t, first.CreatedAt, edited.CreatedAt)

	_, err = repo.Submit(ctx, testRating(1))
	require.Error(t, err)
	assert.True(t, util.HasCode(err, util.CodeAlreadyRated))

	// The rejected third submission leaves the edited value in place.
	stored, err := repo.FindByTicket(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Value)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEditableByUser(t *testing.T) {
	repo := newRatingRepo(t)
	ctx := context.Background()

	_, err := repo.EditableByUser(ctx, "u1")
	assert.True(t, util.HasCode(err, util.CodeNotFound))

	_, err = repo.Submit(ctx, testRating(4))
	require.NoError(t, err)

	editable, err := repo.EditableByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 7, editable.TicketID)

	_, err = repo.Submit(ctx, testRating(2))
	require.NoError(t, err)

	_, err = repo.EditableByUser(ctx, "u1")
	assert.True(t, util.HasCode(err, util.CodeNotFound))
}

func TestRatingsArePerTicket(t *testing.T) {
	repo := newRatingRepo(t)
	ctx := context.Background()

	a := testRating(5)
	b := testRating(2)
	b.TicketID = 8

	_, err := repo.Submit(ctx, a)
	require.NoError(t, err)
	_, err = repo.Submit(ctx, b)
	require.NoError(t, err)

	storedA, err := repo.FindByTicket(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 5, storedA.Value)

	storedB, err := repo.FindByTicket(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, 2, storedB.Value)

	_, err = repo.FindByTicket(ctx, 9)
	assert.True(t, util.HasCode(err, util.CodeNotFound))
}
