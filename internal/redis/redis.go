package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Cache stores relay responses for a limited time.
type Cache struct {
	rdb    *redis.Client
	prefix string
}

func NewCache(address, username, password string) *Cache {
	return &Cache{
		rdb: redis.NewClient(&redis.Options{
			Addr:     address,
			Username: username,
			Password: password,
			DB:       0,
		}),
		prefix: "agnihotra:relay:",
	}
}

// Ping checks the connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Get returns the cached value for key. A miss is not an error.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) {
	if err := c.rdb.Set(ctx, c.prefix+key, value, expiration).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to add to redis")
	}
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}
