package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/heartmarshall/taskbot/internal/domain"
	"github.com/heartmarshall/taskbot/pkg/ctxutil"
)

// MaxMessageLen is the Bot API limit for one text message, in runes.
const MaxMessageLen = 4096

type botAPI interface {
	GetUpdates(ctx context.Context, offset int, timeout time.Duration) ([]tgbotapi.Update, error)
	SendMessage(ctx context.Context, chatID int64, text string, buttons [][]string) error
}

type engine interface {
	Handle(ctx context.Context, userID int64, raw string) domain.OutboundResponse
}

// Options configures the dispatcher.
type Options struct {
	PollTimeout time.Duration
	SendTimeout time.Duration
	Workers     int
	Backoff     time.Duration
}

// Dispatcher polls updates and routes each text message to the engine.
// Messages are sharded by user id across workers so one user's messages are
// handled in arrival order while different users run in parallel.
type Dispatcher struct {
	api    botAPI
	engine engine
	opts   Options
	log    *slog.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(log *slog.Logger, api botAPI, engine engine, opts Options) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 2 * time.Second
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 10 * time.Second
	}
	return &Dispatcher{
		api:    api,
		engine: engine,
		opts:   opts,
		log:    log.With("service", "dispatcher"),
	}
}

// Run polls until ctx is canceled, then drains queued messages and returns nil.
func (d *Dispatcher) Run(ctx context.Context) error {
	shards := make([]chan tgbotapi.Update, d.opts.Workers)
	done := make(chan struct{}, d.opts.Workers)
	// In-flight messages finish after shutdown starts.
	workCtx := context.WithoutCancel(ctx)
	for i := range shards {
		shards[i] = make(chan tgbotapi.Update, 64)
		go func(ch <-chan tgbotapi.Update) {
			defer func() { done <- struct{}{} }()
			for upd := range ch {
				d.handle(workCtx, upd)
			}
		}(shards[i])
	}
	defer func() {
		for _, ch := range shards {
			close(ch)
		}
		for range shards {
			<-done
		}
	}()

	offset := 0
	for {
		if ctx.Err() != nil {
			return nil
		}

		updates, err := d.api.GetUpdates(ctx, offset, d.opts.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			wait := d.opts.Backoff
			var apiErr *tgbotapi.Error
			if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
				wait = time.Duration(apiErr.RetryAfter) * time.Second
			}
			d.log.WarnContext(ctx, "get updates failed",
				slog.String("error", err.Error()),
				slog.Duration("retry_in", wait),
			)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
			continue
		}

		for _, upd := range updates {
			offset = upd.UpdateID + 1
			msg := upd.Message
			if msg == nil || msg.From == nil || msg.Chat == nil || msg.Text == "" {
				continue
			}
			shard := shards[shardOf(msg.From.ID, len(shards))]
			select {
			case shard <- upd:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	ctx = ctxutil.WithRequestID(ctx, "update-"+strconv.Itoa(upd.UpdateID))

	start := time.Now()
	resp := d.engine.Handle(ctx, msg.From.ID, msg.Text)

	d.log.DebugContext(ctx, "message handled",
		slog.Int64("user_id", msg.From.ID),
		slog.Int("update_id", upd.UpdateID),
		slog.Bool("is_error", resp.IsError),
		slog.Duration("duration", time.Since(start)),
	)

	chunks := splitMessage(resp.Text, MaxMessageLen)
	for i, chunk := range chunks {
		// Only the last chunk carries the keyboard.
		var buttons [][]string
		if i == len(chunks)-1 {
			buttons = resp.Buttons
		}
		sendCtx, cancel := context.WithTimeout(ctx, d.opts.SendTimeout)
		err := d.api.SendMessage(sendCtx, msg.Chat.ID, chunk, buttons)
		cancel()
		if err != nil {
			d.log.ErrorContext(ctx, "send message failed",
				slog.Int64("chat_id", msg.Chat.ID),
				slog.String("error", err.Error()),
			)
			return
		}
	}
}

func shardOf(userID int64, n int) int {
	return int(uint64(userID) % uint64(n))
}

// splitMessage cuts text into chunks of at most limit runes, preferring
// line breaks as cut points.
func splitMessage(text string, limit int) []string {
	if text == "" {
		return nil
	}
	var chunks []string
	for utf8.RuneCountInString(text) > limit {
		cut := byteOffset(text, limit)
		if nl := strings.LastIndexByte(text[:cut], '\n'); nl > 0 {
			cut = nl + 1
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	return append(chunks, text)
}

// byteOffset returns the byte index of the n-th rune.
func byteOffset(s string, n int) int {
	i := 0
	for pos := range s {
		if i == n {
			return pos
		}
		i++
	}
	return len(s)
}
