// Package relaybot runs the user-facing bot: it watches incoming messages for
// Telegram message links and relays the referenced content back to the chat.
package relaybot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/tgrelay/relaybot/internal/cache"
	"github.com/tgrelay/relaybot/internal/core/domain"
	"github.com/tgrelay/relaybot/internal/platform/config"
)

const usageText = `👋 <b>Restricted Content Relay</b>

Send me a link to a Telegram message and I will fetch its content for you.

Supported link formats:
• https://t.me/channel_name/123
• https://t.me/c/1234567890/123
• https://telegram.me/channel_name/123

I can relay text, photos, videos, audio and documents.`

// botAPI is the slice of the Bot API client the relay needs. Narrowed for
// testing.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

// ContentFetcher resolves a parsed reference into deliverable content.
type ContentFetcher interface {
	Content(ctx context.Context, ref domain.Reference) (domain.ContentRecord, error)
}

// Bot is the relay bot.
type Bot struct {
	api     botAPI
	fetcher ContentFetcher
	store   cache.Store
	logger  *zerolog.Logger
}

func New(cfg *config.Config, fetcher ContentFetcher, store cache.Store, logger *zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}

	logger.Info().Str("username", api.Self.UserName).Msg("authorized on bot account")

	return &Bot{
		api:     api,
		fetcher: fetcher,
		store:   store,
		logger:  logger,
	}, nil
}

// Run consumes updates until the context is canceled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}

			if update.Message == nil {
				continue
			}

			if update.Message.IsCommand() {
				b.handleCommand(update.Message)

				continue
			}

			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		reply := tgbotapi.NewMessage(msg.Chat.ID, usageText)
		reply.ParseMode = tgbotapi.ModeHTML

		if _, err := b.api.Send(reply); err != nil {
			b.logger.Error().Err(err).Msg("failed to send usage text")
		}
	default:
		reply := tgbotapi.NewMessage(msg.Chat.ID, "Unknown command. Use /help to see what I can do.")

		if _, err := b.api.Send(reply); err != nil {
			b.logger.Error().Err(err).Msg("failed to send command reply")
		}
	}
}
