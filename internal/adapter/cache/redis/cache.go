// Package redis is the shared conversation state cache for multi-replica
// deployments. Records are JSON values under taskbot:conv:{userID}; the
// conditional write uses WATCH/MULTI/EXEC.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/heartmarshall/taskbot/internal/adapter/cache"
	"github.com/heartmarshall/taskbot/internal/config"
	"github.com/heartmarshall/taskbot/internal/domain"
)

// Cache stores conversation state in Redis.
type Cache struct {
	rdb   goredis.UniversalClient
	grace time.Duration
	now   func() time.Time
}

// NewClient builds a go-redis client from config.
func NewClient(cfg config.CacheConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// New wraps a client. grace is added to every ttl so expired records stay
// readable for a while.
func New(rdb goredis.UniversalClient, grace time.Duration) *Cache {
	return &Cache{rdb: rdb, grace: grace, now: time.Now}
}

// Get returns the user's state, nil when absent. An expired record is
// returned along with domain.ErrStateExpired.
func (c *Cache) Get(ctx context.Context, userID int64) (*domain.ConversationState, error) {
	b, err := c.rdb.Get(ctx, cache.Key(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(err, userID)
	}

	s, err := cache.Decode(b)
	if err != nil {
		return nil, err
	}
	return cache.Check(s, c.now(), userID)
}

// Set stores state unconditionally. The version is kept as given.
func (c *Cache) Set(ctx context.Context, userID int64, state domain.ConversationState, ttl time.Duration) error {
	b, err := cache.Encode(cache.Stamp(state, c.now(), ttl))
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, cache.Key(userID), b, c.physicalTTL(ttl)).Err(); err != nil {
		return mapError(err, userID)
	}
	return nil
}

// Clear removes the user's state.
func (c *Cache) Clear(ctx context.Context, userID int64) error {
	if err := c.rdb.Del(ctx, cache.Key(userID)).Err(); err != nil {
		return mapError(err, userID)
	}
	return nil
}

// CompareAndSwap replaces the user's state only if the stored version equals
// expected (an absent record has version 0). A nil next deletes the record.
// On success the stored version is expected+1. A concurrent writer touching
// the key between WATCH and EXEC makes the swap fail with false.
func (c *Cache) CompareAndSwap(ctx context.Context, userID int64, expected int64, next *domain.ConversationState, ttl time.Duration) (bool, error) {
	key := cache.Key(userID)

	var payload []byte
	if next != nil {
		s := cache.Stamp(*next, c.now(), ttl)
		s.Version = expected + 1
		b, err := cache.Encode(s)
		if err != nil {
			return false, err
		}
		payload = b
	}

	swapped := false
	txf := func(tx *goredis.Tx) error {
		var current int64
		b, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, goredis.Nil):
		case err != nil:
			return err
		default:
			s, err := cache.Decode(b)
			if err != nil {
				return err
			}
			current = s.Version
		}
		if current != expected {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			if payload == nil {
				pipe.Del(ctx, key)
			} else {
				pipe.Set(ctx, key, payload, c.physicalTTL(ttl))
			}
			return nil
		})
		if err != nil {
			return err
		}
		swapped = true
		return nil
	}

	err := c.rdb.Watch(ctx, txf, key)
	if errors.Is(err, goredis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, mapError(err, userID)
	}
	return swapped, nil
}

// Ping checks connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return mapError(err, 0)
	}
	return nil
}

func (c *Cache) physicalTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	return ttl + c.grace
}

// mapError wraps transport failures as domain.ErrStorageUnavailable.
// Context errors pass through.
func mapError(err error, userID int64) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("conversation %d: %w", userID, err)
	}
	return fmt.Errorf("conversation %d: %w: %w", userID, domain.ErrStorageUnavailable, err)
}
