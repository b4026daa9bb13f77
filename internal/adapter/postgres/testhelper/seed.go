package testhelper

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/taskbot/internal/domain"
)

// Chat ids are int64; start from the wall clock so reruns against a reused
// container do not collide.
var nextUserID = time.Now().UnixNano() / 1000

// SeedUser inserts a registered user with a unique id.
func SeedUser(t *testing.T, pool *pgxpool.Pool) domain.User {
	t.Helper()

	id := atomic.AddInt64(&nextUserID, 1)
	user := domain.User{
		ID:           id,
		Name:         "Test User",
		Phone:        "+79990001122",
		RegisteredAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, name, phone, registered_at) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Name, user.Phone, user.RegisteredAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser: %v", err)
	}

	return user
}

// SeedTask inserts a pending task for userID created at the given time.
func SeedTask(t *testing.T, pool *pgxpool.Pool, userID int64, description string, tags []string, createdAt time.Time) domain.Task {
	t.Helper()

	if tags == nil {
		tags = []string{}
	}
	task := domain.Task{
		ID:          uuid.New(),
		UserID:      userID,
		Description: description,
		Tags:        tags,
		CreatedAt:   createdAt.UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO tasks (id, user_id, description, tags, created_at) VALUES ($1, $2, $3, $4, $5)`,
		task.ID, task.UserID, task.Description, task.Tags, task.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedTask: %v", err)
	}

	return task
}
