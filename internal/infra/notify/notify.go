// Package notify — оповещения администратора (подключение бухгалтерии, выставленные счета).
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Notifier interface {
	Notify(ctx context.Context, text string)
}

// Telegram шлёт сообщения в админ-чат. Ошибки отправки только логируются.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    *slog.Logger
}

func NewTelegram(token string, chatID int64, log *slog.Logger) (*Telegram, error) {
	return NewTelegramWithEndpoint(token, tgbotapi.APIEndpoint, chatID, &http.Client{}, log)
}

// NewTelegramWithEndpoint — для своего Bot API сервера (и тестов). endpoint в формате tgbotapi.APIEndpoint.
func NewTelegramWithEndpoint(token, endpoint string, chatID int64, hc *http.Client, log *slog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, hc)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Telegram{api: api, chatID: chatID, log: log}, nil
}

func (t *Telegram) Notify(_ context.Context, text string) {
	if t.chatID == 0 {
		return
	}
	if _, err := t.api.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		t.log.Error("send failed", "err", err)
	}
}

// Nop — когда Telegram не настроен.
type Nop struct{}

func (Nop) Notify(context.Context, string) {}

// Recorder копит сообщения в памяти.
type Recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *Recorder) Notify(_ context.Context, text string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, text)
	r.mu.Unlock()
}

func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}
