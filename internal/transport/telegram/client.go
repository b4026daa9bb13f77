// Package telegram connects the conversation engine to the Telegram Bot API
// over long polling.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Client wraps tgbotapi with context-aware getUpdates and sendMessage.
type Client struct {
	bot *tgbotapi.BotAPI
}

// NewClient authenticates the token with getMe. baseURL replaces the public
// API host, which tests and self-hosted Bot API servers use. The HTTP
// timeout leaves room for the long poll.
func NewClient(token, baseURL string, pollTimeout time.Duration) (*Client, error) {
	endpoint := strings.TrimRight(baseURL, "/") + "/bot%s/%s"
	hc := &http.Client{Timeout: pollTimeout + 10*time.Second}

	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, hc)
	if err != nil {
		return nil, fmt.Errorf("telegram getMe: %w", err)
	}
	return &Client{bot: bot}, nil
}

// Username is the bot account name reported by getMe.
func (c *Client) Username() string {
	return c.bot.Self.UserName
}

// GetUpdates long-polls for new messages starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset int, timeout time.Duration) ([]tgbotapi.Update, error) {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	cfg := tgbotapi.UpdateConfig{
		Offset:         offset,
		Timeout:        int(timeout.Seconds()),
		AllowedUpdates: []string{"message"},
	}
	return withContext(ctx, func() ([]tgbotapi.Update, error) {
		return c.bot.GetUpdates(cfg)
	})
}

// SendMessage posts a plain text message to a chat. Non-empty buttons
// replace the reply keyboard, one row per slice.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, buttons [][]string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if len(buttons) > 0 {
		msg.ReplyMarkup = replyKeyboard(buttons)
	}
	_, err := withContext(ctx, func() (tgbotapi.Message, error) {
		return c.bot.Send(msg)
	})
	return err
}

func replyKeyboard(buttons [][]string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(buttons))
	for _, labels := range buttons {
		row := make([]tgbotapi.KeyboardButton, 0, len(labels))
		for _, label := range labels {
			row = append(row, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(row...))
	}
	return tgbotapi.NewReplyKeyboard(rows...)
}

// withContext returns when ctx is done even though tgbotapi calls block
// until the HTTP client timeout. The abandoned call finishes in the background.
func withContext[T any](ctx context.Context, call func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := call()
		ch <- result{v: v, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-ch:
		return r.v, r.err
	}
}
