package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/taskbot/internal/adapter/cache/memory"
	"github.com/heartmarshall/taskbot/internal/adapter/cache/redis"
	memstore "github.com/heartmarshall/taskbot/internal/adapter/memory"
	"github.com/heartmarshall/taskbot/internal/adapter/postgres"
	taskrepo "github.com/heartmarshall/taskbot/internal/adapter/postgres/task"
	userrepo "github.com/heartmarshall/taskbot/internal/adapter/postgres/user"
	"github.com/heartmarshall/taskbot/internal/config"
	"github.com/heartmarshall/taskbot/internal/domain"
	"github.com/heartmarshall/taskbot/migrations"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type userStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
}

type taskStore interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	GetByID(ctx context.Context, userID int64, taskID uuid.UUID) (*domain.Task, error)
	ListPending(ctx context.Context, userID int64) ([]domain.Task, error)
	MarkCompleted(ctx context.Context, userID int64, taskID uuid.UUID, at time.Time) (bool, error)
	Search(ctx context.Context, userID int64, keywords, tags []string) ([]domain.Task, error)
}

type stateCache interface {
	Get(ctx context.Context, userID int64) (*domain.ConversationState, error)
	Set(ctx context.Context, userID int64, state domain.ConversationState, ttl time.Duration) error
	Clear(ctx context.Context, userID int64) error
	CompareAndSwap(ctx context.Context, userID int64, expected int64, next *domain.ConversationState, ttl time.Duration) (bool, error)
	Ping(ctx context.Context) error
}

// storage bundles the durable store behind the repositories the services use.
type storage struct {
	users userStore
	tasks taskStore
	db    pinger
	close func()
}

func openStorage(ctx context.Context, log *slog.Logger, cfg *config.Config) (*storage, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		log.Warn("using in-memory storage, data is lost on restart")
		s := memstore.NewStore()
		return &storage{users: s.Users(), tasks: s.Tasks(), db: s, close: func() {}}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		applied, err := postgres.Migrate(ctx, pool, migrations.FS)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations applied", slog.Int("count", applied))
	}

	return &storage{
		users: userrepo.New(pool),
		tasks: taskrepo.New(pool),
		db:    pool,
		close: pool.Close,
	}, nil
}

func openCache(ctx context.Context, log *slog.Logger, cfg config.CacheConfig) (stateCache, func(), error) {
	if cfg.Driver == config.CacheMemory {
		return memory.New(cfg.MaxEntries, cfg.StateTTL, cfg.ExpiredGrace), func() {}, nil
	}

	rdb := redis.NewClient(cfg)
	c := redis.New(rdb, cfg.ExpiredGrace)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		rdb.Close() //nolint:errcheck
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	log.Info("connected to redis", slog.String("addr", cfg.RedisAddr), slog.Int("db", cfg.RedisDB))

	return c, func() { rdb.Close() }, nil //nolint:errcheck
}
