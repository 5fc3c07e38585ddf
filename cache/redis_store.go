package cache

import (
	"context"
	"log/slog"
	"time"

	"finboard.app/errors"
	"github.com/go-redis/redis/v8"
)

// RedisStore backs the cache with a shared Redis instance. Values additionally
// get a native expiry when the ttl hint is positive, so Redis reclaims dead
// entries on its own in long-running deployments.
type RedisStore struct {
	client *redis.Client
}

type RedisOptions struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func NewRedisStore(opts *RedisOptions) (*RedisStore, error) {
	if opts == nil {
		return nil, errors.NewConfigurationError("redis options cannot be nil", nil)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.NewCacheError("failed to connect to Redis", err)
	}

	slog.Info("Redis cache store connected", "addr", opts.Addr)

	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false
		}
		slog.Error("redis get failed", "error", err, "key", key)
		return nil, false
	}

	return val, true
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiration time.Duration
	if ttl > 0 {
		expiration = ttl
	}

	if err := r.client.Set(ctx, key, value, expiration).Err(); err != nil {
		return errors.NewCacheError("redis set failed", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return errors.NewCacheError("redis delete failed", err)
	}
	return nil
}

func (r *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, errors.NewCacheError("redis scan failed", err)
	}
	return keys, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
