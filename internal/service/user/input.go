package user

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/taskbot/internal/domain"
)

// RegisterInput holds parameters for registration.
type RegisterInput struct {
	UserID int64
	Name   string
	Phone  string
}

// Validate validates the registration input.
func (i RegisterInput) Validate(maxNameLen int) error {
	var errs []domain.FieldError

	name := strings.TrimSpace(i.Name)
	if name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	} else if maxNameLen > 0 && utf8.RuneCountInString(name) > maxNameLen {
		errs = append(errs, domain.FieldError{Field: "name", Message: fmt.Sprintf("max %d characters", maxNameLen)})
	}

	if _, ok := domain.NormalizePhone(i.Phone); !ok {
		errs = append(errs, domain.FieldError{Field: "phone", Message: "invalid format"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func (i RegisterInput) normalized() (name, phone string) {
	phone, _ = domain.NormalizePhone(i.Phone)
	return strings.TrimSpace(i.Name), phone
}
