// Package cache keeps slow-changing lookup answers in Redis so repeated
// checks of one domain do not hit the registrars again.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a string key-value store with expiry.
type Store interface {
	// Get reports ok=false, err=nil on a miss.
	Get(ctx context.Context, key string) (val string, ok bool, err error)
	Set(ctx context.Context, key, val string, ttl time.Duration) error
}

// RedisStore is a Store backed by a single Redis node.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: rdb}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores val under key. SET with an expiry is atomic.
func (s *RedisStore) Set(ctx context.Context, key, val string, ttl time.Duration) error {
	return s.client.Set(ctx, key, val, ttl).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
