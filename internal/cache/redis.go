package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"storefront-service/internal/domain"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const maxJitter = 5 * time.Minute

const (
	fieldVersion = "v"
	fieldData    = "data"
)

// setIfNotOlder writes the cart only when no newer version is cached.
// KEYS[1] cart key; ARGV version, payload, ttl in ms. Returns 1 if written.
var setIfNotOlder = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'v')
if cur and tonumber(cur) > tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'v', ARGV[1], 'data', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// RedisCache keeps serialized carts with a jittered TTL so entries written
// together do not expire together. Each entry carries the cart version and a
// write never replaces a newer one.
type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCache(client *redis.Client, baseTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: baseTTL,
	}
}

var _ CartCache = (*RedisCache)(nil)

func (r *RedisCache) Get(ctx context.Context, ownerID string) (*domain.Cart, error) {
	data, err := r.client.HGet(ctx, cacheKey(ownerID), fieldData).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get")
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, errors.Wrap(err, "unmarshal cart")
	}
	return &cart, nil
}

func (r *RedisCache) Set(ctx context.Context, ownerID string, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return errors.Wrap(err, "marshal cart")
	}

	ttl := r.baseTTL + time.Duration(rand.Int63n(int64(maxJitter)))
	err = setIfNotOlder.Run(ctx, r.client, []string{cacheKey(ownerID)}, cart.Version, data, ttl.Milliseconds()).Err()
	if err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, ownerID string) error {
	if err := r.client.Del(ctx, cacheKey(ownerID)).Err(); err != nil {
		return errors.Wrap(err, "redis delete")
	}
	return nil
}

func cacheKey(ownerID string) string {
	return fmt.Sprintf("cart:%s", ownerID)
}
