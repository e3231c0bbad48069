package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const maxRedisRetries = 10

var ErrTooMuchContention = errors.New("collection kept changing during update")

// RedisBackend stores each collection under its own string key and uses
// WATCH/MULTI so concurrent writers never overwrite each other.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (r *RedisBackend) Read(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return val, err
}

func (r *RedisBackend) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) error {
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err != nil && err != redis.Nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxRedisRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrTooMuchContention
}
