package task

import (
	"context"
	"fmt"

	"github.com/heartmarshall/taskbot/internal/domain"
)

// ListPending returns the user's incomplete tasks, oldest first.
func (s *Service) ListPending(ctx context.Context, userID int64) ([]domain.Task, error) {
	tasks, err := s.tasks.ListPending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending tasks: %w", err)
	}
	return tasks, nil
}
