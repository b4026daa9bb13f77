package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/taskbot/internal/config"
	"github.com/heartmarshall/taskbot/internal/service/conversation"
	tasksvc "github.com/heartmarshall/taskbot/internal/service/task"
	usersvc "github.com/heartmarshall/taskbot/internal/service/user"
	"github.com/heartmarshall/taskbot/internal/transport/middleware"
	"github.com/heartmarshall/taskbot/internal/transport/rest"
	"github.com/heartmarshall/taskbot/internal/transport/telegram"
)

// Run is the application entry point. It loads configuration, opens storage
// and the state cache, then runs the Telegram dispatcher and the health
// server until SIGINT or SIGTERM.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("cache", cfg.Cache.Driver),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, logger, cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.close()

	states, closeCache, err := openCache(ctx, logger, cfg.Cache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer closeCache()

	// --- Services ---
	users := usersvc.NewService(logger, store.users, cfg.Bot.MaxNameLen)
	tasks := tasksvc.NewService(logger, store.tasks, tasksvc.Limits{
		MaxDescriptionLen: cfg.Bot.MaxDescriptionLen,
		MaxTags:           cfg.Bot.MaxTags,
		MaxTagLen:         cfg.Bot.MaxTagLen,
	})
	engine := conversation.NewEngine(logger, states, users, tasks, conversation.Options{
		StateTTL:          cfg.Cache.StateTTL,
		ListLimit:         cfg.Bot.ListLimit,
		MaxNameLen:        cfg.Bot.MaxNameLen,
		MaxDescriptionLen: cfg.Bot.MaxDescriptionLen,
	})

	// --- Transport ---
	client, err := telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.BaseURL, cfg.Telegram.PollTimeout)
	if err != nil {
		return fmt.Errorf("telegram client: %w", err)
	}
	logger.Info("telegram bot authorized", slog.String("username", client.Username()))
	dispatcher := telegram.NewDispatcher(logger, client, engine, telegram.Options{
		PollTimeout: cfg.Telegram.PollTimeout,
		SendTimeout: cfg.Telegram.SendTimeout,
		Workers:     cfg.Telegram.Workers,
	})

	health := rest.NewHealthHandler(BuildVersion(),
		rest.Check{Name: "database", Pinger: store.db},
		rest.Check{Name: "cache", Pinger: states},
	)
	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      middleware.Standard(logger)(health.Routes()),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return dispatcher.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("health server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("health server shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()
	if err != nil {
		logger.Error("stopped with error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("shutdown complete")
	return nil
}
