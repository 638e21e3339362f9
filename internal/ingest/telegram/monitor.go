// Package telegram listens to the club's group chat and forwards every
// message as a raw queue report. Reply parents are captured so short
// answers keep their question context.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/alexey-nikolaev/bhqueue/internal/core/domain"
	"github.com/alexey-nikolaev/bhqueue/internal/ingest"
)

const updateTimeoutSeconds = 30

// Monitor subscribes to a single group chat via the Bot API.
type Monitor struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	handler ingest.Handler
	logger  *zerolog.Logger
}

func NewMonitor(token string, chatID int64, handler ingest.Handler, logger *zerolog.Logger) (*Monitor, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}

	return &Monitor{
		bot:     bot,
		chatID:  chatID,
		handler: handler,
		logger:  logger,
	}, nil
}

// Run consumes the update stream until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = updateTimeoutSeconds

	updates := m.bot.GetUpdatesChan(cfg)

	m.logger.Info().Int64("chat_id", m.chatID).Msg("telegram monitor started")

	for {
		select {
		case <-ctx.Done():
			m.bot.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}

			m.handleUpdate(ctx, update)
		}
	}
}

func (m *Monitor) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}

	if m.chatID != 0 && msg.Chat.ID != m.chatID {
		return
	}

	raw := domain.RawMessage{
		Source:    domain.SourceTelegram,
		SourceID:  fmt.Sprintf("%d:%d", msg.Chat.ID, msg.MessageID),
		Text:      msg.Text,
		Timestamp: time.Unix(int64(msg.Date), 0).UTC().Format(time.RFC3339),
	}

	if msg.From != nil {
		raw.Author = msg.From.UserName
		if raw.Author == "" {
			raw.Author = strconv.FormatInt(msg.From.ID, 10)
		}
	}

	if msg.ReplyToMessage != nil {
		raw.ParentText = msg.ReplyToMessage.Text
	}

	m.handler(ctx, raw)
}
