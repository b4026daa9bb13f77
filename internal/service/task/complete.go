package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/taskbot/internal/domain"
)

// Complete marks the user's task as done. Completing an already completed
// task succeeds without changes. Returns domain.ErrNotFound when the task
// does not exist or belongs to another user.
func (s *Service) Complete(ctx context.Context, userID int64, taskID uuid.UUID) error {
	updated, err := s.tasks.MarkCompleted(ctx, userID, taskID, s.now())
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	if updated {
		s.log.InfoContext(ctx, "task completed",
			slog.Int64("user_id", userID),
			slog.String("task_id", taskID.String()),
		)
		return nil
	}

	// Nothing pending matched: either already done or not ours.
	if _, err := s.tasks.GetByID(ctx, userID, taskID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("complete task %s: %w", taskID, domain.ErrNotFound)
		}
		return fmt.Errorf("complete task: %w", err)
	}
	return nil
}

// CompleteByPosition completes the n-th (1-based) task of ListPending and
// returns it. Returns domain.ErrNotFound when there is no such position.
func (s *Service) CompleteByPosition(ctx context.Context, userID int64, n int) (*domain.Task, error) {
	if n < 1 {
		return nil, domain.NewValidationError("position", "must be a positive number")
	}

	pending, err := s.ListPending(ctx, userID)
	if err != nil {
		return nil, err
	}
	if n > len(pending) {
		return nil, fmt.Errorf("pending task #%d: %w", n, domain.ErrNotFound)
	}

	t := pending[n-1]
	if err := s.Complete(ctx, userID, t.ID); err != nil {
		return nil, err
	}

	t.MarkCompleted(s.now())
	return &t, nil
}
