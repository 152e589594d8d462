package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/mdobak/go-xerrors"
)

const scanBatch = 100

type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisStore keeps entries in Redis under KeyPrefix so Clear never touches foreign keys.
type RedisStore struct {
	inner  *redis.Client
	prefix string
}

func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, xerrors.Newf("ping redis at %s: %w", opts.Addr, err)
	}
	return &RedisStore{inner: client, prefix: opts.KeyPrefix}, nil
}

func (r *RedisStore) key(k string) string {
	return r.prefix + k
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.inner.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, xerrors.New(err)
	}
	return value, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.inner.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return xerrors.New(err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.inner.Del(ctx, r.key(key)).Err(); err != nil {
		return xerrors.New(err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := r.inner.Scan(ctx, cursor, r.prefix+"*", scanBatch).Result()
		if err != nil {
			return xerrors.New(err)
		}
		if len(keys) > 0 {
			if err := r.inner.Del(ctx, keys...).Err(); err != nil {
				return xerrors.New(err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (r *RedisStore) Close() error {
	return r.inner.Close()
}
