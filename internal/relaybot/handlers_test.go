package relaybot

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tgrelay/relaybot/internal/cache"
	"github.com/tgrelay/relaybot/internal/core/domain"
	apperrors "github.com/tgrelay/relaybot/internal/core/errors"
)

type fakeAPI struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	nextID   int

	// sendErr, when set, is consulted per Chattable; a non-nil return fails
	// the send without recording it.
	sendErr func(c tgbotapi.Chattable) error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.sendErr != nil {
		if err := f.sendErr(c); err != nil {
			return tgbotapi.Message{}, err
		}
	}

	f.sent = append(f.sent, c)
	f.nextID++

	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)

	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(_ tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update)
	close(ch)

	return ch
}

type fakeFetcher struct {
	rec   domain.ContentRecord
	err   error
	calls int
}

func (f *fakeFetcher) Content(_ context.Context, _ domain.Reference) (domain.ContentRecord, error) {
	f.calls++

	return f.rec, f.err
}

func newTestBot(api *fakeAPI, fetcher ContentFetcher) *Bot {
	logger := zerolog.Nop()

	return &Bot{
		api:     api,
		fetcher: fetcher,
		store:   cache.NewMemory(),
		logger:  &logger,
	}
}

func incoming(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 7,
		Chat:      &tgbotapi.Chat{ID: 42},
		Text:      text,
	}
}

func sentTexts(api *fakeAPI) []string {
	texts := make([]string, 0, len(api.sent))

	for _, c := range api.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			texts = append(texts, m.Text)
		}
	}

	return texts
}

func TestHandleMessage_NoLinks(t *testing.T) {
	api := &fakeAPI{}
	fetcher := &fakeFetcher{}
	b := newTestBot(api, fetcher)

	b.handleMessage(context.Background(), incoming("Hello world"))

	require.Empty(t, api.sent)
	require.Zero(t, fetcher.calls)
}

func TestHandleMessage_RelaysText(t *testing.T) {
	api := &fakeAPI{}
	fetcher := &fakeFetcher{rec: domain.ContentRecord{Text: "relayed content"}}
	b := newTestBot(api, fetcher)

	b.handleMessage(context.Background(), incoming("see https://t.me/somechannel/42"))

	texts := sentTexts(api)
	require.Equal(t, []string{statusProcessing, "relayed content"}, texts)

	// status message is deleted after a successful relay
	require.Len(t, api.requests, 1)
	require.IsType(t, tgbotapi.DeleteMessageConfig{}, api.requests[0])
}

func TestHandleMessage_InvalidLink(t *testing.T) {
	api := &fakeAPI{}
	fetcher := &fakeFetcher{}
	b := newTestBot(api, fetcher)

	b.handleMessage(context.Background(), incoming("https://t.me/onlyusername"))

	require.Zero(t, fetcher.calls)

	// status posted, then edited to the parse error
	require.Len(t, api.sent, 2)

	edit, ok := api.sent[1].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	require.Contains(t, edit.Text, "Invalid Telegram link format")
	require.Empty(t, api.requests)
}

func TestHandleMessage_FetchFailure(t *testing.T) {
	api := &fakeAPI{}
	fetcher := &fakeFetcher{err: apperrors.ErrNotFound}
	b := newTestBot(api, fetcher)

	b.handleMessage(context.Background(), incoming("https://t.me/c/2059632753/100"))

	require.Equal(t, 1, fetcher.calls)
	require.Len(t, api.sent, 2)

	edit, ok := api.sent[1].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	require.Contains(t, edit.Text, "Could not access the message")
}

func TestHandleMessage_LinksProcessedIndependently(t *testing.T) {
	api := &fakeAPI{}
	fetcher := &fakeFetcher{rec: domain.ContentRecord{Text: "ok"}}
	b := newTestBot(api, fetcher)

	b.handleMessage(context.Background(), incoming("https://t.me/onlyusername and https://t.me/chan/5"))

	// first link fails to parse, second still relays
	require.Equal(t, 1, fetcher.calls)

	texts := sentTexts(api)
	require.Contains(t, texts, "ok")
}

func TestHandleMessage_CacheHitSkipsFetch(t *testing.T) {
	api := &fakeAPI{}
	fetcher := &fakeFetcher{rec: domain.ContentRecord{Text: "cached"}}
	b := newTestBot(api, fetcher)

	msg := incoming("https://t.me/chan/5")
	b.handleMessage(context.Background(), msg)
	b.handleMessage(context.Background(), msg)

	require.Equal(t, 1, fetcher.calls)
	require.Equal(t, 2, countOf(sentTexts(api), "cached"))
}

func TestHandleMessage_EmptyContentNotice(t *testing.T) {
	api := &fakeAPI{}
	fetcher := &fakeFetcher{}
	b := newTestBot(api, fetcher)

	b.handleMessage(context.Background(), incoming("https://t.me/chan/5"))

	require.Contains(t, sentTexts(api), errNoContent)

	// the notice replies to the originating message like every other branch
	for _, c := range api.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok && m.Text == errNoContent {
			require.Equal(t, 7, m.ReplyToMessageID)
		}
	}
}

func TestDeliver_CaptionTruncated(t *testing.T) {
	api := &fakeAPI{}
	fetcher := &fakeFetcher{rec: domain.ContentRecord{
		Kind:    domain.MediaPhoto,
		Media:   []byte{0x1},
		Caption: strings.Repeat("a", 1200),
	}}
	b := newTestBot(api, fetcher)

	b.handleMessage(context.Background(), incoming("https://t.me/chan/5"))

	var photo tgbotapi.PhotoConfig

	found := false

	for _, c := range api.sent {
		if p, ok := c.(tgbotapi.PhotoConfig); ok {
			photo = p
			found = true
		}
	}

	require.True(t, found)
	require.Len(t, photo.Caption, 1000)
	require.True(t, strings.HasSuffix(photo.Caption, truncationMarker))
}

func TestDeliver_MediaFallsBackToText(t *testing.T) {
	api := &fakeAPI{
		sendErr: func(c tgbotapi.Chattable) error {
			if _, ok := c.(tgbotapi.PhotoConfig); ok {
				return errors.New("PHOTO_INVALID_DIMENSIONS")
			}

			return nil
		},
	}
	fetcher := &fakeFetcher{rec: domain.ContentRecord{
		Kind:    domain.MediaPhoto,
		Media:   []byte{0x1},
		Caption: "some caption",
	}}
	b := newTestBot(api, fetcher)

	b.handleMessage(context.Background(), incoming("https://t.me/chan/5"))

	texts := sentTexts(api)
	require.Equal(t, []string{statusProcessing, errMediaFellBack + "some caption"}, texts)

	// the fallback still counts as success: status gets deleted, not edited
	require.Len(t, api.requests, 1)
	require.IsType(t, tgbotapi.DeleteMessageConfig{}, api.requests[0])
}

func TestDeliver_MediaFallbackWithoutText(t *testing.T) {
	api := &fakeAPI{
		sendErr: func(c tgbotapi.Chattable) error {
			if _, ok := c.(tgbotapi.DocumentConfig); ok {
				return errors.New("upload rejected")
			}

			return nil
		},
	}
	fetcher := &fakeFetcher{rec: domain.ContentRecord{
		Kind:  domain.MediaDocument,
		Media: []byte{0x1},
	}}
	b := newTestBot(api, fetcher)

	b.handleMessage(context.Background(), incoming("https://t.me/chan/5"))

	require.Contains(t, sentTexts(api), errMediaFellBack+noTextPlaceholder)
}

func TestDeliver_MediaAndFallbackBothFail(t *testing.T) {
	api := &fakeAPI{
		sendErr: func(c tgbotapi.Chattable) error {
			switch m := c.(type) {
			case tgbotapi.PhotoConfig:
				return errors.New("upload rejected")
			case tgbotapi.MessageConfig:
				if strings.HasPrefix(m.Text, errMediaFellBack) {
					return errors.New("chat unavailable")
				}
			}

			return nil
		},
	}
	fetcher := &fakeFetcher{}
	b := newTestBot(api, fetcher)
	logger := zerolog.Nop()

	rec := domain.ContentRecord{Kind: domain.MediaPhoto, Media: []byte{0x1}, Caption: "x"}

	err := b.deliver(incoming("unused"), rec, &logger)
	require.ErrorIs(t, err, apperrors.ErrMediaSend)
}

func TestDeliver_LongTextChunked(t *testing.T) {
	api := &fakeAPI{}
	fetcher := &fakeFetcher{rec: domain.ContentRecord{Text: strings.Repeat("a", 8500)}}
	b := newTestBot(api, fetcher)

	b.handleMessage(context.Background(), incoming("https://t.me/chan/5"))

	texts := sentTexts(api)

	// status + three chunks
	require.Len(t, texts, 4)
	require.Len(t, texts[1], 4000)
	require.Len(t, texts[2], 4000)
	require.Len(t, texts[3], 500)
}

func countOf(xs []string, want string) int {
	n := 0

	for _, x := range xs {
		if x == want {
			n++
		}
	}

	return n
}
