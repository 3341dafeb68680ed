// Package cache provides the TTL cache-aside layer shared by the candidate
// providers and the merged feed. The store is injected as an interface so
// tests can substitute an in-memory fake, and a store failure is always
// treated as a miss: ranking is a pure function of its inputs within the
// TTL window, so recomputing is safe.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrMiss is returned by Store.Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Store is the key/value contract the engine depends on.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// RedisStore implements Store on a single redis client.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) DeleteByPattern(ctx context.Context, pattern string) error {
	keys, err := s.client.Keys(ctx, pattern).Result()
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		return s.client.Del(ctx, keys...).Err()
	}
	return nil
}

// GetOrCompute is the cache-aside primitive: read the key, and on any miss
// or store error run compute and write the result back with the given TTL.
// Compute errors propagate; write failures are logged and swallowed.
// Concurrent misses for the same key may both compute and both write
// (last write wins), which is acceptable for idempotent results.
func GetOrCompute[T any](
	ctx context.Context,
	store Store,
	logger *logrus.Logger,
	key string,
	ttl time.Duration,
	compute func(ctx context.Context) (T, error),
) (T, bool, error) {
	var zero T

	if store != nil {
		data, err := store.Get(ctx, key)
		if err == nil {
			var cached T
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, true, nil
			}
			logger.WithField("key", key).Warn("Discarding undecodable cache entry")
		} else if !errors.Is(err, ErrMiss) {
			logger.WithError(err).WithField("key", key).Warn("Cache read failed, computing uncached")
		}
	}

	value, err := compute(ctx)
	if err != nil {
		return zero, false, err
	}

	if store != nil {
		if data, err := json.Marshal(value); err == nil {
			if err := store.Set(ctx, key, data, ttl); err != nil {
				logger.WithError(err).WithField("key", key).Warn("Cache write failed")
			}
		}
	}

	return value, false, nil
}
