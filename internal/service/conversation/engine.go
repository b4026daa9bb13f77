// Package conversation drives the per-user chat flows: registration,
// adding a task and searching. Each inbound message advances the user's
// state by exactly one step.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/taskbot/internal/domain"
	"github.com/heartmarshall/taskbot/internal/service/task"
	"github.com/heartmarshall/taskbot/internal/service/user"
	"github.com/heartmarshall/taskbot/pkg/ctxutil"
)

type stateCache interface {
	Get(ctx context.Context, userID int64) (*domain.ConversationState, error)
	CompareAndSwap(ctx context.Context, userID int64, expected int64, next *domain.ConversationState, ttl time.Duration) (bool, error)
}

type userService interface {
	IsRegistered(ctx context.Context, userID int64) (bool, error)
	Register(ctx context.Context, input user.RegisterInput) (*domain.User, error)
}

type taskService interface {
	Create(ctx context.Context, input task.CreateInput) (uuid.UUID, error)
	ListPending(ctx context.Context, userID int64) ([]domain.Task, error)
	CompleteByPosition(ctx context.Context, userID int64, n int) (*domain.Task, error)
	Search(ctx context.Context, input task.SearchInput) ([]domain.Task, error)
}

// Options configures the engine.
type Options struct {
	StateTTL          time.Duration
	ListLimit         int
	MaxNameLen        int
	MaxDescriptionLen int
}

// Engine is the conversation state machine.
type Engine struct {
	cache   stateCache
	users   userService
	tasks   taskService
	machine machine
	opts    Options
	locks   *keyedMutex
	log     *slog.Logger
}

// NewEngine creates a new conversation engine.
func NewEngine(
	log *slog.Logger,
	cache stateCache,
	users userService,
	tasks taskService,
	opts Options,
) *Engine {
	return &Engine{
		cache: cache,
		users: users,
		tasks: tasks,
		machine: machine{
			maxNameLen:        opts.MaxNameLen,
			maxDescriptionLen: opts.MaxDescriptionLen,
		},
		opts:  opts,
		locks: newKeyedMutex(),
		log:   log.With("service", "conversation"),
	}
}

// Handle processes one inbound message and returns the reply. It never
// returns an error: failures become replies with IsError set. A step with a
// side effect is claimed with a conditional write first, and the previous
// step is put back if the effect fails, so each step commits at most once.
func (e *Engine) Handle(ctx context.Context, userID int64, raw string) domain.OutboundResponse {
	unlock := e.locks.Lock(userID)
	defer unlock()

	log := e.log.With(slog.Int64("user_id", userID))
	if id := ctxutil.RequestIDFromCtx(ctx); id != "" {
		log = log.With(slog.String("request_id", id))
	}

	loaded, err := e.cache.Get(ctx, userID)
	expired := errors.Is(err, domain.ErrStateExpired)
	if err != nil && !expired {
		log.ErrorContext(ctx, "load conversation state", slog.String("error", err.Error()))
		return failure(msgUnavailable)
	}

	var version int64
	current := domain.IdleState()
	if loaded != nil {
		version = loaded.Version
		if !expired {
			current = *loaded
		}
	}

	in := parseInput(raw)

	var out outcome
	if expired && !servesAfterExpiry(in) {
		out = toIdle(msgExpired)
	} else {
		registered := true
		if current.IsIdle() {
			registered, err = e.users.IsRegistered(ctx, userID)
			if err != nil {
				log.ErrorContext(ctx, "check registration", slog.String("error", err.Error()))
				return failure(msgUnavailable)
			}
		}
		out = e.machine.transition(current, in, registered)
	}

	log.DebugContext(ctx, "transition",
		slog.String("flow", string(current.Flow)),
		slog.String("step", string(current.Step)),
		slog.String("next_flow", string(out.next.Flow)),
		slog.String("next_step", string(out.next.Step)),
	)

	stored := loaded != nil
	if !out.hasEffect() {
		if _, err := e.persist(ctx, log, userID, version, stored, current, out.next); err != nil {
			return writeFailure(err)
		}
		return withButtons(domain.OutboundResponse{Text: out.reply, IsError: out.replyIsError}, out.next)
	}

	// The next state is claimed before the effect runs, so a lost reply or a
	// second replica holding the same version cannot commit the step again.
	claimed, err := e.persist(ctx, log, userID, version, stored, current, out.next)
	if err != nil {
		return writeFailure(err)
	}

	reply, ok := e.commit(ctx, log, userID, out.effect)
	if ok {
		return withButtons(reply, out.next)
	}
	if !e.restore(ctx, log, userID, claimed, current) {
		return withButtons(failure(msgProgressLost), domain.IdleState())
	}
	return withButtons(reply, current)
}

// servesAfterExpiry reports whether an input is handled as a fresh idle
// command even though the previous flow just expired.
func servesAfterExpiry(in input) bool {
	switch in.command(true) {
	case cmdNone, cmdUnknown, cmdCancel, cmdSkip:
		return false
	}
	return true
}

// commit runs the effect and reports whether the state may advance.
func (e *Engine) commit(ctx context.Context, log *slog.Logger, userID int64, eff effect) (domain.OutboundResponse, bool) {
	text, err := e.run(ctx, userID, eff)
	switch {
	case err == nil:
		return domain.OutboundResponse{Text: text}, true
	case errors.Is(err, domain.ErrAlreadyExists) && eff.kind == effectRegister:
		return domain.OutboundResponse{Text: msgAlreadyRegistered}, true
	case errors.Is(err, domain.ErrValidation):
		return failure(validationMessage(err)), false
	case errors.Is(err, domain.ErrNotFound) && eff.kind == effectCompleteByPosition:
		return failure(fmt.Sprintf(msgNoSuchTask, eff.position)), false
	default:
		log.ErrorContext(ctx, "commit failed",
			slog.Int("effect", int(eff.kind)),
			slog.String("error", err.Error()),
		)
		return failure(msgUnavailable), false
	}
}

func (e *Engine) run(ctx context.Context, userID int64, eff effect) (string, error) {
	switch eff.kind {
	case effectRegister:
		u, err := e.users.Register(ctx, user.RegisterInput{UserID: userID, Name: eff.name, Phone: eff.phone})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(msgRegistered, u.Name), nil

	case effectCreateTask:
		if _, err := e.tasks.Create(ctx, task.CreateInput{UserID: userID, Description: eff.description, Tags: eff.tags}); err != nil {
			return "", err
		}
		return fmt.Sprintf(msgTaskAdded, eff.description), nil

	case effectListPending:
		tasks, err := e.tasks.ListPending(ctx, userID)
		if err != nil {
			return "", err
		}
		return formatPending(tasks, eff.position, e.opts.ListLimit), nil

	case effectCompleteByPosition:
		t, err := e.tasks.CompleteByPosition(ctx, userID, eff.position)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(msgTaskDone, t.Description), nil

	case effectSearch:
		tasks, err := e.tasks.Search(ctx, task.SearchInput{UserID: userID, Keywords: eff.keywords, Tags: eff.tags})
		if err != nil {
			return "", err
		}
		return formatResults(tasks, e.opts.ListLimit), nil
	}
	return "", fmt.Errorf("unknown effect %d", eff.kind)
}

// persist writes next with a conditional swap against the loaded version and
// returns the version the stored record has afterwards (0 when absent).
// Returns domain.ErrStateConflict when another writer changed the state first.
func (e *Engine) persist(
	ctx context.Context,
	log *slog.Logger,
	userID int64,
	version int64,
	stored bool,
	current, next domain.ConversationState,
) (int64, error) {
	if next.IsIdle() && !stored {
		return 0, nil
	}
	if !next.IsIdle() && sameState(current, next) {
		return version, nil
	}

	var target *domain.ConversationState
	if !next.IsIdle() {
		target = &next
	}

	ok, err := e.cache.CompareAndSwap(ctx, userID, version, target, e.opts.StateTTL)
	if err != nil {
		log.ErrorContext(ctx, "save conversation state", slog.String("error", err.Error()))
		return 0, err
	}
	if !ok {
		log.WarnContext(ctx, "conversation state conflict", slog.Int64("version", version))
		return 0, fmt.Errorf("conversation %d: %w", userID, domain.ErrStateConflict)
	}
	if target == nil {
		return 0, nil
	}
	return version + 1, nil
}

// restore puts prev back after a claimed effect failed to commit. It reports
// false when the user's step could not be kept.
func (e *Engine) restore(
	ctx context.Context,
	log *slog.Logger,
	userID int64,
	claimed int64,
	prev domain.ConversationState,
) bool {
	if prev.IsIdle() {
		return true
	}
	ok, err := e.cache.CompareAndSwap(ctx, userID, claimed, &prev, e.opts.StateTTL)
	if err != nil || !ok {
		attrs := []any{slog.Int64("version", claimed)}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		log.WarnContext(ctx, "restore conversation state", attrs...)
		return false
	}
	return true
}

func sameState(a, b domain.ConversationState) bool {
	return a.Flow == b.Flow && a.Step == b.Step && a.Scratch == b.Scratch
}

func failure(text string) domain.OutboundResponse {
	return domain.OutboundResponse{Text: text, IsError: true}
}

func writeFailure(err error) domain.OutboundResponse {
	if errors.Is(err, domain.ErrStateConflict) {
		return failure(msgConflict)
	}
	return failure(msgUnavailable)
}

func withButtons(resp domain.OutboundResponse, s domain.ConversationState) domain.OutboundResponse {
	resp.Buttons = buttonsFor(s)
	return resp
}

func asValidation(err error) (*domain.ValidationError, bool) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
