package revocation

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV adapts a go-redis client to [KV].
type RedisKV struct {
	redis redis.UniversalClient
}

// NewRedisKV wraps redisClient.
func NewRedisKV(redisClient redis.UniversalClient) *RedisKV {
	return &RedisKV{redis: redisClient}
}

// SetWithTTL writes key with an expiry. Sub-second TTLs are sent as PX.
func (r *RedisKV) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.redis.Set(ctx, key, value, ttl).Err()
}

// SetIfAbsent issues SET NX with an expiry.
func (r *RedisKV) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	err := r.redis.SetArgs(ctx, key, value, redis.SetArgs{Mode: "NX", TTL: ttl}).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Get returns the value at key; found is false when the key is absent or expired.
func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}
