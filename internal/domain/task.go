package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task is a single to-do item owned by exactly one user.
// Tags are normalized and unique within the task.
type Task struct {
	ID          uuid.UUID
	UserID      int64
	Description string
	Tags        []string
	Completed   bool
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Matches reports whether the task satisfies a search request.
// keywords and tags are expected to be normalized (see NormalizeKeywords, NormalizeTags).
//
// A task matches when (keywords is empty OR the description contains at least
// one keyword, case-insensitively) AND (tags is empty OR the task carries at
// least one of the tags).
func (t *Task) Matches(keywords, tags []string) bool {
	if len(keywords) > 0 {
		desc := strings.ToLower(t.Description)
		found := false
		for _, kw := range keywords {
			if strings.Contains(desc, kw) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(tags) > 0 {
		found := false
		for _, tag := range tags {
			if slices.Contains(t.Tags, tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// MarkCompleted flips the task to completed. Completing twice keeps the
// original completion timestamp. Returns false if the task was already completed.
func (t *Task) MarkCompleted(at time.Time) bool {
	if t.Completed {
		return false
	}
	t.Completed = true
	t.CompletedAt = &at
	return true
}
