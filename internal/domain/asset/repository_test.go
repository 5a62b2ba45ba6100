package asset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalmarket/internal/database/dbtest"
)

func TestRepository_ImagesRoundTrip(t *testing.T) {
	repo := NewRepository(dbtest.Open(t, Models()...))
	ctx := context.Background()

	a := &Asset{OwnerID: 1, Name: "Kayak", PriceCents: 2500, Images: []string{"https://img/1.jpg", "https://img/2.jpg"}, IsActive: true}
	require.NoError(t, repo.Create(ctx, a))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img/1.jpg", "https://img/2.jpg"}, []string(got.Images))
	assert.Equal(t, "https://img/1.jpg", got.PrimaryImage())

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestRepository_Summaries(t *testing.T) {
	repo := NewRepository(dbtest.Open(t, Models()...))
	ctx := context.Background()

	a := &Asset{OwnerID: 4, Name: "Tent", PriceCents: 900}
	require.NoError(t, repo.Create(ctx, a))

	out, err := repo.Summaries(ctx, []int64{a.ID, 12345})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Tent", out[a.ID].Name)
	assert.Equal(t, int64(4), out[a.ID].OwnerID)
	assert.Empty(t, out[a.ID].Image)
}
