package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository holds the revoked-token list and the dm+d hot cache.
type RedisRepository struct {
	rdb *redis.Client
}

func NewRedisRepository(rdb *redis.Client) *RedisRepository {
	return &RedisRepository{rdb: rdb}
}

func (r *RedisRepository) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	key := "blacklist:" + jti
	exists, err := r.rdb.Exists(ctx, key).Result()
	return exists == 1, err
}

// Blacklist revokes a token id until ttl elapses, which should match the
// token's remaining lifetime.
func (r *RedisRepository) Blacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	key := "blacklist:" + jti
	return r.rdb.Set(ctx, key, "true", ttl).Err()
}

// GetCached returns the cached bytes for key, or nil on a miss.
func (r *RedisRepository) GetCached(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, "dmd:"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

func (r *RedisRepository) SetCached(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.rdb.Set(ctx, "dmd:"+key, value, ttl).Err()
}
