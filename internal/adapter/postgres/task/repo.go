// Package task implements the Task repository using PostgreSQL.
// Tags are stored as a TEXT[] column; search is pushed down to SQL via
// ILIKE ANY for keywords and array overlap for tags.
package task

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/taskbot/internal/adapter/postgres"
	"github.com/heartmarshall/taskbot/internal/domain"
)

const table = "tasks"

var columns = []string{"id", "user_id", "description", "tags", "is_completed", "created_at", "completed_at"}

// Repo provides task persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new task repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a task owned by userID.
// Returns domain.ErrNotFound if the task does not exist or belongs to another user.
func (r *Repo) GetByID(ctx context.Context, userID int64, taskID uuid.UUID) (*domain.Task, error) {
	query, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(sq.Eq{"id": taskID}).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	t, err := scanTask(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "task", taskID)
	}
	return t, nil
}

// ListPending returns the user's incomplete tasks, oldest first.
func (r *Repo) ListPending(ctx context.Context, userID int64) ([]domain.Task, error) {
	return r.list(ctx, userID, postgres.Builder().
		Select(columns...).
		From(table).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"is_completed": false}).
		OrderBy("created_at ASC", "id ASC"))
}

// Search returns the user's tasks whose description contains any of the
// keywords (case-insensitive) and whose tags overlap the requested tags.
// An empty keywords or tags slice disables that filter. Newest first.
func (r *Repo) Search(ctx context.Context, userID int64, keywords, tags []string) ([]domain.Task, error) {
	b := postgres.Builder().
		Select(columns...).
		From(table).
		Where(sq.Eq{"user_id": userID})

	if len(keywords) > 0 {
		patterns := make([]string, len(keywords))
		for i, kw := range keywords {
			patterns[i] = "%" + escapeLike(kw) + "%"
		}
		b = b.Where("description ILIKE ANY(?)", patterns)
	}
	if len(tags) > 0 {
		b = b.Where("tags && ?", tags)
	}

	return r.list(ctx, userID, b.OrderBy("created_at DESC", "id DESC"))
}

func (r *Repo) list(ctx context.Context, userID int64, b sq.SelectBuilder) ([]domain.Task, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "tasks of user", userID)
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, postgres.MapError(err, "tasks of user", userID)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "tasks of user", userID)
	}

	return tasks, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new task and returns the persisted domain.Task.
func (r *Repo) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}

	query, args, err := postgres.Builder().
		Insert(table).
		Columns(columns...).
		Values(t.ID, t.UserID, t.Description, tags, t.Completed, t.CreatedAt, t.CompletedAt).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, err
	}

	created, err := scanTask(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "task", t.ID)
	}
	return created, nil
}

// MarkCompleted completes a pending task owned by userID.
// Returns false (and no error) when no pending owned row matched, which is
// either an unknown/foreign task or one that is already completed.
func (r *Repo) MarkCompleted(ctx context.Context, userID int64, taskID uuid.UUID, at time.Time) (bool, error) {
	query, args, err := postgres.Builder().
		Update(table).
		Set("is_completed", true).
		Set("completed_at", at).
		Where(sq.Eq{"id": taskID}).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"is_completed": false}).
		ToSql()
	if err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, postgres.MapError(err, "task", taskID)
	}

	return tag.RowsAffected() == 1, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(&t.ID, &t.UserID, &t.Description, &t.Tags, &t.Completed, &t.CreatedAt, &t.CompletedAt); err != nil {
		return nil, err
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return &t, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE wildcards so keywords match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

