package kvstore

import (
	"context"
	"time"

	pkgredis "github.com/bhargavsatvara/zyqora-storefront/pkg/redis"
)

// redisBackend is the subset of pkg/redis.Client used by the Redis store.
type redisBackend interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	StateKey(key string) string
}

// Redis stores visitor state in redis under the zq:state namespace.
type Redis struct {
	client redisBackend
}

func NewRedis(client redisBackend) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.client.GetBytes(ctx, r.client.StateKey(key))
	if pkgredis.IsNil(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.client.StateKey(key), value, ttl)
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.client.StateKey(key))
}
