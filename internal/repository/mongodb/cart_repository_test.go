package mongodb

import (
	"context"
	"testing"

	"storefront-service/internal/domain"
	mongoinfra "storefront-service/internal/infra/mongodb"
	"storefront-service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupTestDB(t *testing.T) repository.CartRepository {
	if testing.Short() {
		t.Skip("integration test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcmongo.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := mongoinfra.Connect(ctx, uri, "testdb")
	require.NoError(t, err)

	repo := NewCartRepository(db)
	require.NoError(t, CreateIndexes(ctx, db))
	return repo
}

func TestGetCart_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	cart, err := repo.GetCart(context.Background(), "nonexistent")

	assert.ErrorIs(t, err, repository.ErrCartNotFound)
	assert.Nil(t, cart)
}

func TestSaveCart_RoundTrip(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	cart := domain.NewCart("user123")
	cart.LastMergeToken = "login-1"
	cart.Lines = append(cart.Lines, domain.CartLine{
		LineID:    domain.LineIDFor("user123", "p1"),
		ProductID: "p1",
		Quantity:  3,
		UnitPrice: decimal.RequireFromString("19.99"),
	})
	require.NoError(t, repo.SaveCart(ctx, cart))
	assert.Equal(t, int64(1), cart.Version)

	got, err := repo.GetCart(ctx, "user123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, "login-1", got.LastMergeToken)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, 3, got.Lines[0].Quantity)
	assert.Equal(t, "19.99", got.Lines[0].UnitPrice.StringFixed(2))
}

func TestSaveCart_VersionConflict(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveCart(ctx, domain.NewCart("user123")))
	assert.ErrorIs(t, repo.SaveCart(ctx, domain.NewCart("user123")), repository.ErrVersionConflict)

	a, err := repo.GetCart(ctx, "user123")
	require.NoError(t, err)
	b, err := repo.GetCart(ctx, "user123")
	require.NoError(t, err)

	a.Lines = append(a.Lines, domain.CartLine{LineID: "l1", ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(1)})
	require.NoError(t, repo.SaveCart(ctx, a))

	b.Clear()
	assert.ErrorIs(t, repo.SaveCart(ctx, b), repository.ErrVersionConflict)

	got, err := repo.GetCart(ctx, "user123")
	require.NoError(t, err)
	assert.Len(t, got.Lines, 1)
	assert.Equal(t, int64(2), got.Version)
}
