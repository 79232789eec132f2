package cache

import (
	"context"
	"errors"
	"time"

	redis "github.com/go-redis/redis/v8"

	apperrors "github.com/leeforge/picture/errors"
	"github.com/leeforge/picture/json"
)

// RedisAdapter stores entries as JSON strings in Redis.
type RedisAdapter struct {
	client redis.UniversalClient
}

func NewRedisAdapter(client redis.UniversalClient) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) Get(ctx context.Context, key string) (Entry, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, apperrors.NewCache(err, "redis get failed")
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false, apperrors.NewCache(err, "corrupt cache entry").WithDetail("key", key)
	}
	return e, true, nil
}

func (r *RedisAdapter) Set(ctx context.Context, key string, e Entry, ttl time.Duration) error {
	data, err := json.Marshal(&e)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return apperrors.NewCache(err, "redis set failed")
	}
	return nil
}

func (r *RedisAdapter) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return apperrors.NewCache(err, "redis delete failed")
	}
	return nil
}

var _ Adapter = (*RedisAdapter)(nil)
