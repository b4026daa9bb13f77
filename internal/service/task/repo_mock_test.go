package task

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/taskbot/internal/domain"
)

var _ taskRepo = &taskRepoMock{}

type taskRepoMock struct {
	CreateFunc        func(ctx context.Context, t *domain.Task) (*domain.Task, error)
	GetByIDFunc       func(ctx context.Context, userID int64, taskID uuid.UUID) (*domain.Task, error)
	ListPendingFunc   func(ctx context.Context, userID int64) ([]domain.Task, error)
	MarkCompletedFunc func(ctx context.Context, userID int64, taskID uuid.UUID, at time.Time) (bool, error)
	SearchFunc        func(ctx context.Context, userID int64, keywords, tags []string) ([]domain.Task, error)

	calls struct {
		Create []struct {
			T *domain.Task
		}
		GetByID []struct {
			UserID int64
			TaskID uuid.UUID
		}
		ListPending []struct {
			UserID int64
		}
		MarkCompleted []struct {
			UserID int64
			TaskID uuid.UUID
			At     time.Time
		}
		Search []struct {
			UserID   int64
			Keywords []string
			Tags     []string
		}
	}
	lockCreate        sync.RWMutex
	lockGetByID       sync.RWMutex
	lockListPending   sync.RWMutex
	lockMarkCompleted sync.RWMutex
	lockSearch        sync.RWMutex
}

func (mock *taskRepoMock) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	if mock.CreateFunc == nil {
		panic("taskRepoMock.CreateFunc: method is nil but taskRepo.Create was just called")
	}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, struct{ T *domain.Task }{T: t})
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, t)
}

func (mock *taskRepoMock) CreateCalls() []struct{ T *domain.Task } {
	mock.lockCreate.RLock()
	defer mock.lockCreate.RUnlock()
	return mock.calls.Create
}

func (mock *taskRepoMock) GetByID(ctx context.Context, userID int64, taskID uuid.UUID) (*domain.Task, error) {
	if mock.GetByIDFunc == nil {
		panic("taskRepoMock.GetByIDFunc: method is nil but taskRepo.GetByID was just called")
	}
	callInfo := struct {
		UserID int64
		TaskID uuid.UUID
	}{UserID: userID, TaskID: taskID}
	mock.lockGetByID.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, callInfo)
	mock.lockGetByID.Unlock()
	return mock.GetByIDFunc(ctx, userID, taskID)
}

func (mock *taskRepoMock) GetByIDCalls() []struct {
	UserID int64
	TaskID uuid.UUID
} {
	mock.lockGetByID.RLock()
	defer mock.lockGetByID.RUnlock()
	return mock.calls.GetByID
}

func (mock *taskRepoMock) ListPending(ctx context.Context, userID int64) ([]domain.Task, error) {
	if mock.ListPendingFunc == nil {
		panic("taskRepoMock.ListPendingFunc: method is nil but taskRepo.ListPending was just called")
	}
	mock.lockListPending.Lock()
	mock.calls.ListPending = append(mock.calls.ListPending, struct{ UserID int64 }{UserID: userID})
	mock.lockListPending.Unlock()
	return mock.ListPendingFunc(ctx, userID)
}

func (mock *taskRepoMock) ListPendingCalls() []struct{ UserID int64 } {
	mock.lockListPending.RLock()
	defer mock.lockListPending.RUnlock()
	return mock.calls.ListPending
}

func (mock *taskRepoMock) MarkCompleted(ctx context.Context, userID int64, taskID uuid.UUID, at time.Time) (bool, error) {
	if mock.MarkCompletedFunc == nil {
		panic("taskRepoMock.MarkCompletedFunc: method is nil but taskRepo.MarkCompleted was just called")
	}
	callInfo := struct {
		UserID int64
		TaskID uuid.UUID
		At     time.Time
	}{UserID: userID, TaskID: taskID, At: at}
	mock.lockMarkCompleted.Lock()
	mock.calls.MarkCompleted = append(mock.calls.MarkCompleted, callInfo)
	mock.lockMarkCompleted.Unlock()
	return mock.MarkCompletedFunc(ctx, userID, taskID, at)
}

func (mock *taskRepoMock) MarkCompletedCalls() []struct {
	UserID int64
	TaskID uuid.UUID
	At     time.Time
} {
	mock.lockMarkCompleted.RLock()
	defer mock.lockMarkCompleted.RUnlock()
	return mock.calls.MarkCompleted
}

func (mock *taskRepoMock) Search(ctx context.Context, userID int64, keywords, tags []string) ([]domain.Task, error) {
	if mock.SearchFunc == nil {
		panic("taskRepoMock.SearchFunc: method is nil but taskRepo.Search was just called")
	}
	callInfo := struct {
		UserID   int64
		Keywords []string
		Tags     []string
	}{UserID: userID, Keywords: keywords, Tags: tags}
	mock.lockSearch.Lock()
	mock.calls.Search = append(mock.calls.Search, callInfo)
	mock.lockSearch.Unlock()
	return mock.SearchFunc(ctx, userID, keywords, tags)
}

func (mock *taskRepoMock) SearchCalls() []struct {
	UserID   int64
	Keywords []string
	Tags     []string
} {
	mock.lockSearch.RLock()
	defer mock.lockSearch.RUnlock()
	return mock.calls.Search
}
