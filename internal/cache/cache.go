package cache

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Key prefixes
const (
	accountKeyPrefix = "account:"
	statsKey         = "admin:stats"
	versionPrefix    = "ver:"
)

// versionTTL keeps invalidation counters far longer than any cached value
const versionTTL = 24 * time.Hour

// Cache is a JSON read-through cache on top of Redis. Every key has a
// version counter so a reader never stores a value older than the last
// invalidation. A nil *Cache is valid and never hits.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New returns a Cache that stores entries for ttl
func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// AccountKey is the cache key of one account with its orders
func AccountKey(id string) string { return accountKeyPrefix + id }

// StatsKey is the cache key of the admin statistics
func StatsKey() string { return statsKey }

func versionKey(key string) string { return versionPrefix + key }

// Get retrieves a value from Redis and unmarshals it into dest
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if c == nil {
		return false, nil
	}
	val, err := c.rdb.Get(ctx, key).Bytes() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Version returns the invalidation counter of key. It must be read before
// the value is loaded from the database and handed back to Set.
func (c *Cache) Version(ctx context.Context, key string) (int64, error) {
	if c == nil {
		return 0, nil
	}
	v, err := c.rdb.Get(ctx, versionKey(key)).Int64() // Missing counter reads as zero
	if err == redis.Nil {
		return 0, nil
	}
	return v, err
}

// Set stores value as JSON with the cache TTL, but only while the counter of
// key still equals version. A writer that invalidated key in between wins and
// Set reports false.
func (c *Cache) Set(ctx context.Context, key string, value any, version int64) (bool, error) {
	if c == nil {
		return false, nil
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return false, err // Return error if marshaling fails
	}
	vkey := versionKey(key)
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, vkey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur != version {
			return redis.TxFailedErr // Invalidated since the caller read the version
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, c.ttl) // Set value in Redis with TTL
			return nil
		})
		return err
	}, vkey)
	if err == redis.TxFailedErr {
		return false, nil // Lost the race to a writer, leave the key empty
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Invalidate bumps the counter of every key and removes the cached values
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Incr(ctx, versionKey(key))               // Readers holding the old version will not cache
			pipe.Expire(ctx, versionKey(key), versionTTL) // Counters of deleted rows age out
		}
		pipe.Del(ctx, keys...) // Delete keys from Redis
		return nil
	})
	return err
}
