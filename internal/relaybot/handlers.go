package relaybot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tgrelay/relaybot/internal/cache"
	"github.com/tgrelay/relaybot/internal/linkparse"
	"github.com/tgrelay/relaybot/internal/platform/observability"
)

const (
	statusProcessing  = "🔄 Processing your request..."
	errInvalidLink    = "❌ Invalid Telegram link format: %s"
	errInaccessible   = "❌ Could not access the message. It might be from a private channel or the message doesn't exist."
	errProcessing     = "❌ Error processing link: %s"
	errNoContent      = "❌ No content found in the message."
	errMediaFellBack  = "❌ Media could not be sent, but here's the text:\n\n"
	noTextPlaceholder = "No text content"
)

// handleMessage scans an incoming message for Telegram message links and
// relays each one in turn. Messages without links are ignored. Links are
// processed independently; one failing never blocks the rest.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	links := linkparse.ExtractMessageLinks(msg.Text)
	if len(links) == 0 {
		return
	}

	b.logger.Info().Int("links", len(links)).Int64("chat_id", msg.Chat.ID).Msg("processing message links")

	for _, link := range links {
		b.processLink(ctx, msg, link)
	}
}

func (b *Bot) processLink(ctx context.Context, msg *tgbotapi.Message, link string) {
	logger := b.logger.With().Str("link_id", uuid.NewString()).Str("url", link).Logger()

	status := b.sendStatus(msg, &logger)

	ref, err := linkparse.Parse(link)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid link")
		observability.LinksProcessed.WithLabelValues("invalid").Inc()
		b.editStatus(msg.Chat.ID, status, fmt.Sprintf(errInvalidLink, link), &logger)

		return
	}

	key := cache.Key(ref)

	rec, ok := b.store.Get(key)
	if ok {
		observability.CacheHits.Inc()
		logger.Debug().Str("key", key).Msg("cache hit")
	} else {
		observability.CacheMisses.Inc()

		rec, err = b.fetcher.Content(ctx, ref)
		if err != nil {
			logger.Warn().Err(err).Msg("fetch failed")
			observability.LinksProcessed.WithLabelValues("not_found").Inc()
			b.editStatus(msg.Chat.ID, status, errInaccessible, &logger)

			return
		}

		b.store.Put(key, rec)
	}

	if err = b.deliver(msg, rec, &logger); err != nil {
		logger.Error().Err(err).Msg("delivery failed")
		observability.LinksProcessed.WithLabelValues("error").Inc()
		b.editStatus(msg.Chat.ID, status, fmt.Sprintf(errProcessing, err), &logger)

		return
	}

	observability.LinksProcessed.WithLabelValues("ok").Inc()
	b.deleteStatus(msg.Chat.ID, status, &logger)
}

// sendStatus posts the transient per-link status reply. A nil return means
// the status message could not be created; relaying proceeds without it.
func (b *Bot) sendStatus(msg *tgbotapi.Message, logger *zerolog.Logger) *tgbotapi.Message {
	reply := tgbotapi.NewMessage(msg.Chat.ID, statusProcessing)
	reply.ReplyToMessageID = msg.MessageID

	sent, err := b.api.Send(reply)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to send status message")

		return nil
	}

	return &sent
}

func (b *Bot) editStatus(chatID int64, status *tgbotapi.Message, text string, logger *zerolog.Logger) {
	if status == nil {
		if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			logger.Warn().Err(err).Msg("failed to send error message")
		}

		return
	}

	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, status.MessageID, text)); err != nil {
		logger.Warn().Err(err).Msg("failed to edit status message")
	}
}

func (b *Bot) deleteStatus(chatID int64, status *tgbotapi.Message, logger *zerolog.Logger) {
	if status == nil {
		return
	}

	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, status.MessageID)); err != nil {
		logger.Warn().Err(err).Msg("failed to delete status message")
	}
}
