package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"storefront-service/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCache(client, 15*time.Minute), mr
}

func testCart(ownerID string) *domain.Cart {
	return &domain.Cart{
		OwnerID: ownerID,
		Lines: []domain.CartLine{
			{LineID: "l1", ProductID: "p1", Quantity: 2, UnitPrice: decimal.RequireFromString("19.99")},
			{LineID: "l2", ProductID: "p2", Quantity: 1, UnitPrice: decimal.RequireFromString("5.00")},
		},
		Version: 3,
	}
}

func TestGet_Success(t *testing.T) {
	c, mr := setupTestRedis(t)

	data, err := json.Marshal(testCart("user123"))
	require.NoError(t, err)
	mr.HSet(cacheKey("user123"), fieldVersion, "3", fieldData, string(data))

	got, err := c.Get(context.Background(), "user123")

	require.NoError(t, err)
	assert.Equal(t, "user123", got.OwnerID)
	assert.Len(t, got.Lines, 2)
	assert.Equal(t, int64(3), got.Version)
	assert.Equal(t, "44.98", got.Subtotal().StringFixed(2))
}

func TestGet_Miss(t *testing.T) {
	c, _ := setupTestRedis(t)

	got, err := c.Get(context.Background(), "nobody")

	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, got)
}

func TestGet_CorruptEntry(t *testing.T) {
	c, mr := setupTestRedis(t)
	mr.HSet(cacheKey("user123"), fieldVersion, "1", fieldData, "{not json")

	_, err := c.Get(context.Background(), "user123")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestSet_AppliesJitteredTTL(t *testing.T) {
	c, mr := setupTestRedis(t)

	require.NoError(t, c.Set(context.Background(), "user123", testCart("user123")))

	assert.True(t, mr.Exists(cacheKey("user123")))
	ttl := mr.TTL(cacheKey("user123"))
	assert.GreaterOrEqual(t, ttl, 15*time.Minute)
	assert.Less(t, ttl, 15*time.Minute+maxJitter)
}

func TestSet_KeepsNewerVersion(t *testing.T) {
	c, _ := setupTestRedis(t)
	ctx := context.Background()

	newer := testCart("user123")
	newer.Version = 5
	require.NoError(t, c.Set(ctx, "user123", newer))

	older := testCart("user123")
	older.Version = 4
	older.Lines = older.Lines[:1]
	require.NoError(t, c.Set(ctx, "user123", older))

	got, err := c.Get(ctx, "user123")
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Version)
	assert.Len(t, got.Lines, 2)

	same := testCart("user123")
	same.Version = 5
	same.Lines = same.Lines[:1]
	require.NoError(t, c.Set(ctx, "user123", same))

	got, err = c.Get(ctx, "user123")
	require.NoError(t, err)
	assert.Len(t, got.Lines, 1, "equal version overwrites")
}

func TestDelete(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "user123", testCart("user123")))

	require.NoError(t, c.Delete(ctx, "user123"))
	require.NoError(t, c.Delete(ctx, "user123"))

	assert.False(t, mr.Exists(cacheKey("user123")))
}

func TestRedisDown(t *testing.T) {
	c, mr := setupTestRedis(t)
	mr.Close()

	_, err := c.Get(context.Background(), "user123")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
