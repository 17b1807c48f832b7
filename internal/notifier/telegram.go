package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram sends notifications as bot messages to a single chat. The bot
// client is created on first use.
type Telegram struct {
	token    string
	chatID   int64
	endpoint string

	mu  sync.Mutex
	api *tgbotapi.BotAPI
}

// NewTelegram returns a sink for chatID. endpoint overrides the Bot API URL
// format and may be empty.
func NewTelegram(token string, chatID int64, endpoint string) *Telegram {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	return &Telegram{token: token, chatID: chatID, endpoint: endpoint}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(ctx context.Context, title, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	api, err := t.client()
	if err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, title+"\n"+message)
	if _, err := api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func (t *Telegram) client() (*tgbotapi.BotAPI, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.api != nil {
		return t.api, nil
	}
	if t.token == "" || t.chatID == 0 {
		return nil, errors.New("telegram token and chat id are required")
	}
	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(t.token, t.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect telegram bot: %w", err)
	}
	t.api = api
	return api, nil
}
