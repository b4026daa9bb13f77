package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/heartmarshall/taskbot/internal/domain"
)

var _ stateCache = &stateCacheMock{}

type stateCacheMock struct {
	GetFunc            func(ctx context.Context, userID int64) (*domain.ConversationState, error)
	CompareAndSwapFunc func(ctx context.Context, userID int64, expected int64, next *domain.ConversationState, ttl time.Duration) (bool, error)

	calls struct {
		Get []struct {
			UserID int64
		}
		CompareAndSwap []struct {
			UserID   int64
			Expected int64
			Next     *domain.ConversationState
			TTL      time.Duration
		}
	}
	lockGet            sync.RWMutex
	lockCompareAndSwap sync.RWMutex
}

func (mock *stateCacheMock) Get(ctx context.Context, userID int64) (*domain.ConversationState, error) {
	if mock.GetFunc == nil {
		panic("stateCacheMock.GetFunc: method is nil but stateCache.Get was just called")
	}
	mock.lockGet.Lock()
	mock.calls.Get = append(mock.calls.Get, struct{ UserID int64 }{UserID: userID})
	mock.lockGet.Unlock()
	return mock.GetFunc(ctx, userID)
}

func (mock *stateCacheMock) GetCalls() []struct{ UserID int64 } {
	mock.lockGet.RLock()
	defer mock.lockGet.RUnlock()
	return mock.calls.Get
}

func (mock *stateCacheMock) CompareAndSwap(ctx context.Context, userID int64, expected int64, next *domain.ConversationState, ttl time.Duration) (bool, error) {
	if mock.CompareAndSwapFunc == nil {
		panic("stateCacheMock.CompareAndSwapFunc: method is nil but stateCache.CompareAndSwap was just called")
	}
	callInfo := struct {
		UserID   int64
		Expected int64
		Next     *domain.ConversationState
		TTL      time.Duration
	}{UserID: userID, Expected: expected, Next: next, TTL: ttl}
	mock.lockCompareAndSwap.Lock()
	mock.calls.CompareAndSwap = append(mock.calls.CompareAndSwap, callInfo)
	mock.lockCompareAndSwap.Unlock()
	return mock.CompareAndSwapFunc(ctx, userID, expected, next, ttl)
}

func (mock *stateCacheMock) CompareAndSwapCalls() []struct {
	UserID   int64
	Expected int64
	Next     *domain.ConversationState
	TTL      time.Duration
} {
	mock.lockCompareAndSwap.RLock()
	defer mock.lockCompareAndSwap.RUnlock()
	return mock.calls.CompareAndSwap
}
