// Package memory is the in-process conversation state cache built on an
// expirable LRU.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/heartmarshall/taskbot/internal/adapter/cache"
	"github.com/heartmarshall/taskbot/internal/domain"
)

// Cache keeps conversation state per user. Entries are physically evicted
// after ttl+grace or when the LRU is full; logical expiry is checked on Get.
// The mutex serializes the compare step of CompareAndSwap.
type Cache struct {
	mu  sync.Mutex
	lru *expirable.LRU[int64, domain.ConversationState]
	now func() time.Time
}

// New creates a cache holding at most maxEntries records (0 = unbounded),
// each kept for at most ttl+grace.
func New(maxEntries int, ttl, grace time.Duration) *Cache {
	return &Cache{
		lru: expirable.NewLRU[int64, domain.ConversationState](maxEntries, nil, ttl+grace),
		now: time.Now,
	}
}

// Get returns the user's state, nil when absent. An expired record is
// returned along with domain.ErrStateExpired.
func (c *Cache) Get(ctx context.Context, userID int64) (*domain.ConversationState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	s, ok := c.lru.Get(userID)
	c.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return cache.Check(&s, c.now(), userID)
}

// Set stores state unconditionally. The version is kept as given.
func (c *Cache) Set(ctx context.Context, userID int64, state domain.ConversationState, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(userID, cache.Stamp(state, c.now(), ttl))
	return nil
}

// Clear removes the user's state.
func (c *Cache) Clear(ctx context.Context, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(userID)
	return nil
}

// CompareAndSwap replaces the user's state only if the stored version equals
// expected (an absent record has version 0). A nil next deletes the record.
// On success the stored version is expected+1.
func (c *Cache) CompareAndSwap(ctx context.Context, userID int64, expected int64, next *domain.ConversationState, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var current int64
	if s, ok := c.lru.Peek(userID); ok {
		current = s.Version
	}
	if current != expected {
		return false, nil
	}

	if next == nil {
		c.lru.Remove(userID)
		return true, nil
	}

	s := cache.Stamp(*next, c.now(), ttl)
	s.Version = expected + 1
	c.lru.Add(userID, s)
	return true, nil
}

// Ping always succeeds.
func (c *Cache) Ping(context.Context) error { return nil }

// Len reports the number of stored records.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
