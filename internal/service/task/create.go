package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/taskbot/internal/domain"
)

// Create adds a new pending task for the user and returns its id.
func (s *Service) Create(ctx context.Context, input CreateInput) (uuid.UUID, error) {
	input.Description = domain.CollapseSpace(input.Description)
	input.Tags = domain.NormalizeTags(input.Tags)

	if err := input.Validate(s.limits); err != nil {
		return uuid.Nil, err
	}

	created, err := s.tasks.Create(ctx, &domain.Task{
		ID:          uuid.New(),
		UserID:      input.UserID,
		Description: input.Description,
		Tags:        input.Tags,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("create task: %w", err)
	}

	s.log.InfoContext(ctx, "task created",
		slog.Int64("user_id", input.UserID),
		slog.String("task_id", created.ID.String()),
		slog.Int("tags", len(created.Tags)),
	)

	return created.ID, nil
}
