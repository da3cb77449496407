package implementation

import (
	"context"
	"errors"

	"note-editor-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "note-editor:"

type RedisBackingStore struct {
	rdb *redis.Client
}

func NewRedisBackingStore(rdb *redis.Client) contract.BackingStore {
	return &RedisBackingStore{rdb: rdb}
}

func (r *RedisBackingStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.rdb.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisBackingStore) Set(ctx context.Context, key, value string) error {
	return r.rdb.Set(ctx, redisKeyPrefix+key, value, 0).Err()
}

func (r *RedisBackingStore) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, redisKeyPrefix+key).Err()
}
