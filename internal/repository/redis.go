package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const maxWatchRetries = 10

type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

// GetJSON decodes the value at key into dest. A missing key is ErrNotFound.
func (r *RedisRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

// UpdateJSON runs a read-modify-write on key under WATCH, retrying when
// another client changed the key in between. fn receives nil when the key
// does not exist.
func (r *RedisRepository) UpdateJSON(ctx context.Context, key string, expiration time.Duration, fn func(current []byte) (interface{}, error)) error {
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		data, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, expiration)
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update %s: too many concurrent writers", key)
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

// RedisCounter is the Redis flavour of the order counter, used when Redis is
// configured. INCR is atomic on the server.
type RedisCounter struct {
	repo   *RedisRepository
	prefix string
}

func NewRedisCounter(repo *RedisRepository) *RedisCounter {
	return &RedisCounter{repo: repo, prefix: "counter:"}
}

func (r *RedisCounter) Next(ctx context.Context, name string) (int64, error) {
	n, err := r.repo.client.Incr(ctx, r.prefix+name).Result()
	if err != nil {
		return 0, fmt.Errorf("next %s: %w", name, err)
	}
	return n, nil
}

// Seed raises the counter to at least value. It runs at startup, before
// any order is numbered.
func (r *RedisCounter) Seed(ctx context.Context, name string, value int64) error {
	key := r.prefix + name
	current, err := r.repo.client.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if err == nil {
		if n, convErr := strconv.ParseInt(current, 10, 64); convErr == nil && n >= value {
			return nil
		}
	}
	return r.repo.client.Set(ctx, key, value, 0).Err()
}
