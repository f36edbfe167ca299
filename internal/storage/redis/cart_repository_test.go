package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norafoods/storefront/internal/domain"
)

func setupRepo(t *testing.T) (*CartRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCartRepository(client, time.Hour), mr
}

func sampleCart() domain.Cart {
	return domain.Cart{Lines: []domain.CartLine{
		{ProductID: "p-1", Name: "Banana Chips", UnitPriceMinor: 25000, Quantity: 2, StockCeiling: 10},
	}}
}

func TestCartRepositorySaveLoad(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "sess-1", sampleCart()))

	loaded, err := repo.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 1)
	assert.Equal(t, "p-1", loaded.Lines[0].ProductID)
	assert.Equal(t, int32(2), loaded.Lines[0].Quantity)
	assert.Equal(t, int64(50000), loaded.TotalMinor())
}

func TestCartRepositoryLoadMiss(t *testing.T) {
	repo, _ := setupRepo(t)

	_, err := repo.Load(context.Background(), "unknown")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestCartRepositoryDelete(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "sess-1", sampleCart()))
	require.NoError(t, repo.Delete(ctx, "sess-1"))

	_, err := repo.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestCartRepositoryTTLExpiry(t *testing.T) {
	repo, mr := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "sess-1", sampleCart()))

	// Снапшот исчезает после TTL.
	mr.FastForward(2 * time.Hour)

	_, err := repo.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}
