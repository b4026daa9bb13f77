//go:build integration

package redis

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/heartmarshall/taskbot/internal/domain"
)

var (
	once      sync.Once
	sharedURL string
	initErr   error
)

func setupRedis(t *testing.T) *goredis.Client {
	t.Helper()

	once.Do(func() {
		sharedURL, initErr = startRedis()
	})
	if initErr != nil {
		t.Fatalf("failed to start redis: %v", initErr)
	}

	rdb := goredis.NewClient(&goredis.Options{Addr: sharedURL})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func startRedis() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}
	return fmt.Sprintf("%s:%s", host, port.Port()), nil
}

func TestCache_Integration_RoundTrip(t *testing.T) {
	c := New(setupRedis(t), time.Hour)
	ctx := context.Background()
	userID := time.Now().UnixNano()

	got, err := c.Get(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err := c.CompareAndSwap(ctx, userID, 0, &domain.ConversationState{
		Flow:    domain.FlowAddingTask,
		Step:    domain.StepAwaitingTagsOrSkip,
		Scratch: domain.Scratch{TaskText: "buy milk"},
	}, 10*time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	got, err = c.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, "buy milk", got.Scratch.TaskText)

	ok, err = c.CompareAndSwap(ctx, userID, 0, nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.CompareAndSwap(ctx, userID, 1, nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = c.Get(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCache_Integration_Expired(t *testing.T) {
	c := New(setupRedis(t), time.Hour)
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()
	userID := time.Now().UnixNano()

	require.NoError(t, c.Set(ctx, userID, domain.ConversationState{Flow: domain.FlowSearching}, time.Minute))

	now = now.Add(2 * time.Minute)
	got, err := c.Get(ctx, userID)
	require.ErrorIs(t, err, domain.ErrStateExpired)
	assert.Equal(t, domain.FlowSearching, got.Flow)

	require.NoError(t, c.Clear(ctx, userID))
}

func TestCache_Integration_ExactlyOneWinner(t *testing.T) {
	c := New(setupRedis(t), time.Hour)
	ctx := context.Background()
	userID := time.Now().UnixNano()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := c.CompareAndSwap(ctx, userID, 0, &domain.ConversationState{Flow: domain.FlowSearching}, time.Minute)
			if err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}
