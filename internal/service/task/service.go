// Package task owns the task lifecycle: create, list, complete and search.
// Ownership is enforced on every operation.
package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/taskbot/internal/domain"
)

type taskRepo interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	GetByID(ctx context.Context, userID int64, taskID uuid.UUID) (*domain.Task, error)
	ListPending(ctx context.Context, userID int64) ([]domain.Task, error)
	MarkCompleted(ctx context.Context, userID int64, taskID uuid.UUID, at time.Time) (bool, error)
	Search(ctx context.Context, userID int64, keywords, tags []string) ([]domain.Task, error)
}

// Limits bounds user-supplied task fields.
type Limits struct {
	MaxDescriptionLen int
	MaxTags           int
	MaxTagLen         int
}

// Service provides task operations.
type Service struct {
	tasks  taskRepo
	limits Limits
	log    *slog.Logger
	now    func() time.Time
}

// NewService creates a new Task service.
func NewService(
	log *slog.Logger,
	tasks taskRepo,
	limits Limits,
) *Service {
	return &Service{
		tasks:  tasks,
		limits: limits,
		log:    log.With("service", "task"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}
