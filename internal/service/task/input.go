package task

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/taskbot/internal/domain"
)

// CreateInput holds the parameters for creating a task.
type CreateInput struct {
	UserID      int64
	Description string
	Tags        []string
}

// Validate checks all fields against limits and collects all errors.
// Tags are expected to be normalized already.
func (i CreateInput) Validate(l Limits) error {
	var errs []domain.FieldError

	desc := strings.TrimSpace(i.Description)
	if desc == "" {
		errs = append(errs, domain.FieldError{Field: "description", Message: "required"})
	}
	if l.MaxDescriptionLen > 0 && utf8.RuneCountInString(desc) > l.MaxDescriptionLen {
		errs = append(errs, domain.FieldError{Field: "description", Message: fmt.Sprintf("max %d characters", l.MaxDescriptionLen)})
	}

	if l.MaxTags > 0 && len(i.Tags) > l.MaxTags {
		errs = append(errs, domain.FieldError{Field: "tags", Message: fmt.Sprintf("max %d tags", l.MaxTags)})
	}
	for _, tag := range i.Tags {
		if l.MaxTagLen > 0 && utf8.RuneCountInString(tag) > l.MaxTagLen {
			errs = append(errs, domain.FieldError{Field: "tags", Message: fmt.Sprintf("tag %q exceeds %d characters", tag, l.MaxTagLen)})
		}
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// SearchInput holds the parameters for a task search.
type SearchInput struct {
	UserID   int64
	Keywords []string
	Tags     []string
}

// Validate requires at least one search term. Terms are expected to be normalized.
func (i SearchInput) Validate() error {
	if len(i.Keywords) == 0 && len(i.Tags) == 0 {
		return domain.NewValidationError("query", "at least one keyword or tag required")
	}
	return nil
}
