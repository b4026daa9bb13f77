// Package user implements the User repository using PostgreSQL.
package user

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	postgres "github.com/heartmarshall/taskbot/internal/adapter/postgres"
	"github.com/heartmarshall/taskbot/internal/domain"
)

const table = "users"

var columns = []string{"id", "name", "phone", "registered_at"}

// Repo provides user persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new user repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// GetByID returns a user by chat user id.
// Returns domain.ErrNotFound if the user has not registered.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var u domain.User
	if err := r.db.QueryRow(ctx, query, args...).Scan(&u.ID, &u.Name, &u.Phone, &u.RegisteredAt); err != nil {
		return nil, postgres.MapError(err, "user", id)
	}

	return &u, nil
}

// Create inserts a new user and returns the persisted domain.User.
// Returns domain.ErrAlreadyExists if a user with the same id is registered.
func (r *Repo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	query, args, err := postgres.Builder().
		Insert(table).
		Columns(columns...).
		Values(u.ID, u.Name, u.Phone, u.RegisteredAt).
		Suffix("RETURNING id, name, phone, registered_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	var out domain.User
	if err := r.db.QueryRow(ctx, query, args...).Scan(&out.ID, &out.Name, &out.Phone, &out.RegisteredAt); err != nil {
		return nil, postgres.MapError(err, "user", u.ID)
	}

	return &out, nil
}
