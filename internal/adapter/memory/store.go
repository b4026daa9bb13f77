// Package memory is an in-process Durable Store used for local runs and
// engine tests. It keeps the same contract as the PostgreSQL repositories.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/taskbot/internal/domain"
)

type taskRow struct {
	task domain.Task
	seq  uint64
}

// Store holds users and tasks behind one RWMutex.
type Store struct {
	mu    sync.RWMutex
	users map[int64]domain.User
	tasks map[uuid.UUID]*taskRow
	seq   uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users: make(map[int64]domain.User),
		tasks: make(map[uuid.UUID]*taskRow),
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Tasks returns the task repository view of the store.
func (s *Store) Tasks() *TaskRepo { return &TaskRepo{s: s} }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

// UserRepo implements user persistence on top of Store.
type UserRepo struct {
	s *Store
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[u.ID]; ok {
		return nil, fmt.Errorf("user %d: %w", u.ID, domain.ErrAlreadyExists)
	}
	r.s.users[u.ID] = *u
	out := *u
	return &out, nil
}

// ---------------------------------------------------------------------------
// Tasks
// ---------------------------------------------------------------------------

// TaskRepo implements task persistence on top of Store.
type TaskRepo struct {
	s *Store
}

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[t.UserID]; !ok {
		return nil, fmt.Errorf("task %s: user %d: %w", t.ID, t.UserID, domain.ErrNotFound)
	}
	if _, ok := r.s.tasks[t.ID]; ok {
		return nil, fmt.Errorf("task %s: %w", t.ID, domain.ErrAlreadyExists)
	}

	r.s.seq++
	r.s.tasks[t.ID] = &taskRow{task: clone(*t), seq: r.s.seq}
	out := clone(*t)
	return &out, nil
}

func (r *TaskRepo) GetByID(ctx context.Context, userID int64, taskID uuid.UUID) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.tasks[taskID]
	if !ok || row.task.UserID != userID {
		return nil, fmt.Errorf("task %s: %w", taskID, domain.ErrNotFound)
	}
	out := clone(row.task)
	return &out, nil
}

func (r *TaskRepo) ListPending(ctx context.Context, userID int64) ([]domain.Task, error) {
	rows, err := r.collect(ctx, func(t *domain.Task) bool {
		return t.UserID == userID && !t.Completed
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(rows, func(a, b *taskRow) int {
		if c := a.task.CreatedAt.Compare(b.task.CreatedAt); c != 0 {
			return c
		}
		return cmpSeq(a.seq, b.seq)
	})
	return unwrap(rows), nil
}

func (r *TaskRepo) Search(ctx context.Context, userID int64, keywords, tags []string) ([]domain.Task, error) {
	rows, err := r.collect(ctx, func(t *domain.Task) bool {
		return t.UserID == userID && matches(t, keywords, tags)
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(rows, func(a, b *taskRow) int {
		if c := b.task.CreatedAt.Compare(a.task.CreatedAt); c != 0 {
			return c
		}
		return cmpSeq(b.seq, a.seq)
	})
	return unwrap(rows), nil
}

func (r *TaskRepo) MarkCompleted(ctx context.Context, userID int64, taskID uuid.UUID, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.tasks[taskID]
	if !ok || row.task.UserID != userID {
		return false, nil
	}
	return row.task.MarkCompleted(at), nil
}

func (r *TaskRepo) collect(ctx context.Context, keep func(*domain.Task) bool) ([]*taskRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*taskRow, 0)
	for _, row := range r.s.tasks {
		if keep(&row.task) {
			cp := &taskRow{task: clone(row.task), seq: row.seq}
			out = append(out, cp)
		}
	}
	return out, nil
}

// matches mirrors the SQL search: keywords are substrings matched
// case-insensitively, tags are compared exactly.
func matches(t *domain.Task, keywords, tags []string) bool {
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	return t.Matches(lowered, tags)
}

func clone(t domain.Task) domain.Task {
	t.Tags = slices.Clone(t.Tags)
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		t.CompletedAt = &at
	}
	return t
}

func unwrap(rows []*taskRow) []domain.Task {
	out := make([]domain.Task, len(rows))
	for i, row := range rows {
		out[i] = row.task
	}
	return out
}

func cmpSeq(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
