package relaybot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/tgrelay/relaybot/internal/core/domain"
	apperrors "github.com/tgrelay/relaybot/internal/core/errors"
	"github.com/tgrelay/relaybot/internal/platform/observability"
)

// deliver sends a content record back to the requesting chat as a reply.
func (b *Bot) deliver(msg *tgbotapi.Message, rec domain.ContentRecord, logger *zerolog.Logger) error {
	switch {
	case rec.HasMedia():
		return b.deliverMedia(msg, rec, logger)
	case rec.Text != "":
		return b.deliverText(msg, rec.Text)
	default:
		observability.DeliveriesTotal.WithLabelValues("notice").Inc()

		notice := tgbotapi.NewMessage(msg.Chat.ID, errNoContent)
		notice.ReplyToMessageID = msg.MessageID

		if _, err := b.api.Send(notice); err != nil {
			return fmt.Errorf("failed to send notice: %w", err)
		}

		return nil
	}
}

func (b *Bot) deliverMedia(msg *tgbotapi.Message, rec domain.ContentRecord, logger *zerolog.Logger) error {
	caption := rec.Caption
	if caption == "" {
		caption = rec.Text
	}

	media := b.buildMedia(msg.Chat.ID, rec, TruncateCaption(caption), msg.MessageID)

	_, err := b.api.Send(media)
	if err == nil {
		observability.DeliveriesTotal.WithLabelValues(rec.Kind.String()).Inc()

		return nil
	}

	logger.Warn().Err(err).Str("kind", rec.Kind.String()).Msg("media send failed, falling back to text")
	observability.MediaFallbacks.Inc()

	text := caption
	if text == "" {
		text = noTextPlaceholder
	}

	if err := b.deliverText(msg, errMediaFellBack+text); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrMediaSend, err)
	}

	return nil
}

func (b *Bot) buildMedia(chatID int64, rec domain.ContentRecord, caption string, replyTo int) tgbotapi.Chattable {
	name := rec.FileName
	if name == "" {
		name = "file"
	}

	file := tgbotapi.FileBytes{Name: name, Bytes: rec.Media}

	switch rec.Kind {
	case domain.MediaPhoto:
		photo := tgbotapi.NewPhoto(chatID, file)
		photo.Caption = caption
		photo.ReplyToMessageID = replyTo

		return photo
	case domain.MediaVideo:
		video := tgbotapi.NewVideo(chatID, file)
		video.Caption = caption
		video.ReplyToMessageID = replyTo

		return video
	case domain.MediaAudio:
		audio := tgbotapi.NewAudio(chatID, file)
		audio.Caption = caption
		audio.ReplyToMessageID = replyTo

		return audio
	default:
		doc := tgbotapi.NewDocument(chatID, file)
		doc.Caption = caption
		doc.ReplyToMessageID = replyTo

		return doc
	}
}

func (b *Bot) deliverText(msg *tgbotapi.Message, text string) error {
	for _, chunk := range SplitText(text) {
		reply := tgbotapi.NewMessage(msg.Chat.ID, chunk)
		reply.ReplyToMessageID = msg.MessageID

		if _, err := b.api.Send(reply); err != nil {
			return fmt.Errorf("failed to send text: %w", err)
		}
	}

	observability.DeliveriesTotal.WithLabelValues("text").Inc()

	return nil
}
