package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
)

const (
	fieldValue   = "value"
	fieldVersion = "version"
)

// Redis stores each key as a hash of value and version under a key prefix,
// without expiry.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis wraps a client. prefix is prepended to every key.
func NewRedis(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) Load(ctx context.Context, key string) ([]byte, error) {
	v, _, err := r.LoadVersion(ctx, key)
	return v, err
}

func (r *Redis) LoadVersion(ctx context.Context, key string) ([]byte, int64, error) {
	h, err := r.rdb.HGetAll(ctx, r.prefix+key).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("load %s: %w", key, err)
	}
	value, ok := h[fieldValue]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	version, err := strconv.ParseInt(h[fieldVersion], 10, 64)
	if err != nil {
		return nil, 0, fmt.Errorf("load %s: bad version %q", key, h[fieldVersion])
	}
	return []byte(value), version, nil
}

func (r *Redis) Save(ctx context.Context, key string, value []byte) error {
	k := r.prefix + key
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, fieldValue, value)
		pipe.HIncrBy(ctx, k, fieldVersion, 1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SaveIfVersion watches the key so a write landing between the version check
// and EXEC aborts the transaction.
func (r *Redis) SaveIfVersion(ctx context.Context, key string, version int64, value []byte) (int64, error) {
	k := r.prefix + key
	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.HGet(ctx, k, fieldVersion).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != version {
			return fmt.Errorf("%w: %s at %d, expected %d", ErrConflict, key, cur, version)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, k, fieldValue, value, fieldVersion, version+1)
			return nil
		})
		return err
	}, k)

	switch {
	case err == nil:
		return version + 1, nil
	case errors.Is(err, ErrConflict):
		return 0, err
	case errors.Is(err, redis.TxFailedErr):
		return 0, fmt.Errorf("%w: %s", ErrConflict, key)
	}
	return 0, fmt.Errorf("save %s: %w", key, err)
}
