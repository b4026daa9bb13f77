package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/taskbot/internal/domain"
)

// Search returns the user's tasks matching any keyword and any tag,
// newest first. At least one keyword or tag is required.
func (s *Service) Search(ctx context.Context, input SearchInput) ([]domain.Task, error) {
	input.Keywords = domain.NormalizeKeywords(input.Keywords)
	input.Tags = domain.NormalizeTags(input.Tags)

	if err := input.Validate(); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.Search(ctx, input.UserID, input.Keywords, input.Tags)
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}

	s.log.DebugContext(ctx, "tasks searched",
		slog.Int64("user_id", input.UserID),
		slog.Int("keywords", len(input.Keywords)),
		slog.Int("tags", len(input.Tags)),
		slog.Int("results", len(tasks)),
	)

	return tasks, nil
}
