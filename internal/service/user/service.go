// Package user handles registration and user lookup.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/taskbot/internal/domain"
)

// userRepo defines the user repository interface needed by user service.
type userRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
}

// Service implements registration and user lookup.
type Service struct {
	log        *slog.Logger
	users      userRepo
	maxNameLen int
	now        func() time.Time
}

// NewService creates a new user service instance.
func NewService(
	logger *slog.Logger,
	users userRepo,
	maxNameLen int,
) *Service {
	return &Service{
		log:        logger.With("service", "user"),
		users:      users,
		maxNameLen: maxNameLen,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Get returns a registered user or domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// IsRegistered reports whether the user has completed registration.
func (s *Service) IsRegistered(ctx context.Context, userID int64) (bool, error) {
	_, err := s.users.GetByID(ctx, userID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("check registration: %w", err)
	}
}

// Register stores a new user. Registering an existing id does not change
// the stored record: the existing user is returned together with
// domain.ErrAlreadyExists.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := input.Validate(s.maxNameLen); err != nil {
		return nil, err
	}
	name, phone := input.normalized()

	created, err := s.users.Create(ctx, &domain.User{
		ID:           input.UserID,
		Name:         name,
		Phone:        phone,
		RegisteredAt: s.now(),
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		existing, getErr := s.users.GetByID(ctx, input.UserID)
		if getErr != nil {
			return nil, fmt.Errorf("register user: %w", getErr)
		}
		return existing, fmt.Errorf("register user %d: %w", input.UserID, domain.ErrAlreadyExists)
	}
	if err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}

	s.log.InfoContext(ctx, "user registered", slog.Int64("user_id", created.ID))

	return created, nil
}
