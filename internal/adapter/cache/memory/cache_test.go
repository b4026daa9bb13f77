package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/taskbot/internal/domain"
)

func newCache(t *testing.T) (*Cache, *time.Time) {
	t.Helper()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := New(100, 10*time.Minute, time.Hour)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCache_GetAbsent(t *testing.T) {
	t.Parallel()
	c, _ := newCache(t)

	got, err := c.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCache_SetGetClear(t *testing.T) {
	t.Parallel()
	c, now := newCache(t)
	ctx := context.Background()

	st := domain.ConversationState{Flow: domain.FlowRegistering, Step: domain.StepAwaitingName, Version: 4}
	require.NoError(t, c.Set(ctx, 1, st, 10*time.Minute))

	got, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StepAwaitingName, got.Step)
	assert.Equal(t, int64(4), got.Version)
	assert.Equal(t, now.Add(10*time.Minute), got.ExpiresAt)

	require.NoError(t, c.Clear(ctx, 1))
	got, err = c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCache_LogicalExpiry(t *testing.T) {
	t.Parallel()
	c, now := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 1, domain.ConversationState{Flow: domain.FlowAddingTask, Step: domain.StepAwaitingText}, 10*time.Minute))

	*now = now.Add(11 * time.Minute)
	got, err := c.Get(ctx, 1)
	require.ErrorIs(t, err, domain.ErrStateExpired)
	require.NotNil(t, got)
	assert.Equal(t, domain.FlowAddingTask, got.Flow)
}

func TestCache_CompareAndSwap(t *testing.T) {
	t.Parallel()
	c, _ := newCache(t)
	ctx := context.Background()

	next := &domain.ConversationState{Flow: domain.FlowSearching, Step: domain.StepAwaitingQuery}

	ok, err := c.CompareAndSwap(ctx, 1, 0, next, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)

	ok, err = c.CompareAndSwap(ctx, 1, 0, next, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "stale version must lose")

	ok, err = c.CompareAndSwap(ctx, 1, 1, nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, c.Len())
}

func TestCache_CompareAndSwap_ExpiredRecordStillVersioned(t *testing.T) {
	t.Parallel()
	c, now := newCache(t)
	ctx := context.Background()

	ok, err := c.CompareAndSwap(ctx, 1, 0, &domain.ConversationState{Flow: domain.FlowAddingTask}, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	*now = now.Add(2 * time.Minute)
	_, err = c.Get(ctx, 1)
	require.ErrorIs(t, err, domain.ErrStateExpired)

	ok, err = c.CompareAndSwap(ctx, 1, 0, nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.CompareAndSwap(ctx, 1, 1, nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCache_CompareAndSwap_ExactlyOneWinner(t *testing.T) {
	t.Parallel()
	c, _ := newCache(t)
	ctx := context.Background()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := c.CompareAndSwap(ctx, 7, 0, &domain.ConversationState{Flow: domain.FlowSearching}, time.Minute)
			if err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestCache_LRUBound(t *testing.T) {
	t.Parallel()
	c := New(2, time.Minute, time.Minute)
	ctx := context.Background()

	for id := int64(1); id <= 3; id++ {
		require.NoError(t, c.Set(ctx, id, domain.ConversationState{Flow: domain.FlowSearching}, time.Minute))
	}
	assert.Equal(t, 2, c.Len())

	got, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got, "oldest entry evicted")
}
