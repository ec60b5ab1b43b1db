package fetch

import (
	"context"
	"fmt"
	"sync"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tgrelay/relaybot/internal/core/domain"
	apperrors "github.com/tgrelay/relaybot/internal/core/errors"
	"github.com/tgrelay/relaybot/internal/platform/config"
)

const rateLimitBurst = 3

// MTProtoProvider is a fetch provider backed by a gotd session. The same type
// serves both the elevated user session and the bot-authorized fallback; only
// the auth step differs.
type MTProtoProvider struct {
	name    string
	client  *telegram.Client
	authFn  func(ctx context.Context) error
	limiter *rate.Limiter
	logger  *zerolog.Logger

	mu     sync.Mutex
	api    *tg.Client
	ready  chan struct{}
	closed bool
}

// NewUserProvider builds the elevated-privilege provider authenticated as a
// full user account.
func NewUserProvider(cfg *config.Config, logger *zerolog.Logger) *MTProtoProvider {
	client := telegram.NewClient(cfg.TGAPIID, cfg.TGAPIHash, telegram.Options{
		SessionStorage: &telegram.FileSessionStorage{
			Path: cfg.TGSessionPath,
		},
	})

	p := newProvider("user", client, cfg, logger)
	p.authFn = func(ctx context.Context) error {
		return client.Auth().IfNecessary(ctx, userAuthFlow(cfg, logger))
	}

	return p
}

// NewBotProvider builds the fallback provider authenticated with the bot
// token. It shares the delivery bot's identity but speaks MTProto, which is
// what message fetching needs.
func NewBotProvider(cfg *config.Config, logger *zerolog.Logger) *MTProtoProvider {
	client := telegram.NewClient(cfg.TGAPIID, cfg.TGAPIHash, telegram.Options{
		SessionStorage: &telegram.FileSessionStorage{
			Path: cfg.BotSessionPath,
		},
	})

	p := newProvider("bot", client, cfg, logger)
	p.authFn = func(ctx context.Context) error {
		status, err := client.Auth().Status(ctx)
		if err != nil {
			return err
		}

		if status.Authorized {
			return nil
		}

		_, err = client.Auth().Bot(ctx, cfg.BotToken)

		return err
	}

	return p
}

func newProvider(name string, client *telegram.Client, cfg *config.Config, logger *zerolog.Logger) *MTProtoProvider {
	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 0.5
	}

	return &MTProtoProvider{
		name:    name,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), rateLimitBurst),
		logger:  logger,
		ready:   make(chan struct{}),
	}
}

func (p *MTProtoProvider) Name() string { return p.name }

// Run connects and authenticates the session, then holds it open until the
// context is canceled. Fetch blocks until the session is ready.
func (p *MTProtoProvider) Run(ctx context.Context) error {
	defer p.markClosed()

	return p.client.Run(ctx, func(ctx context.Context) error {
		if err := p.authFn(ctx); err != nil {
			return fmt.Errorf("auth: %w", err)
		}

		p.logger.Info().Str("provider", p.name).Msg("Telegram session authorized")

		p.mu.Lock()
		p.api = tg.NewClient(p.client)
		p.mu.Unlock()

		p.markClosed()

		<-ctx.Done()

		return ctx.Err()
	})
}

// markClosed unblocks Fetch callers. Called both on successful auth and when
// the session terminates, so a failed session fails fast instead of hanging.
func (p *MTProtoProvider) markClosed() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		p.closed = true
		close(p.ready)
	}
}

func (p *MTProtoProvider) waitReady(ctx context.Context) (*tg.Client, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.ready:
	}

	p.mu.Lock()
	api := p.api
	p.mu.Unlock()

	if api == nil {
		return nil, fmt.Errorf("%w: %s session not available", apperrors.ErrClientNotConfigured, p.name)
	}

	return api, nil
}

func (p *MTProtoProvider) Fetch(ctx context.Context, ref domain.Reference) (*Snapshot, error) {
	api, err := p.waitReady(ctx)
	if err != nil {
		return nil, err
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	channel, err := p.resolveChannel(ctx, api, ref)
	if err != nil {
		return nil, classifyErr(err)
	}

	messages, err := api.ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{
		Channel: channel,
		ID:      []tg.InputMessageClass{&tg.InputMessageID{ID: ref.MessageID}},
	})
	if err != nil {
		return nil, classifyErr(fmt.Errorf("failed to get message: %w", err))
	}

	channelMessages, ok := messages.(*tg.MessagesChannelMessages)
	if !ok || len(channelMessages.Messages) == 0 {
		return nil, apperrors.ErrNotFound
	}

	msg, ok := channelMessages.Messages[0].(*tg.Message)
	if !ok {
		return nil, fmt.Errorf("%w: %T", apperrors.ErrUnexpectedType, channelMessages.Messages[0])
	}

	return &Snapshot{Msg: msg, api: api}, nil
}

func (p *MTProtoProvider) resolveChannel(ctx context.Context, api *tg.Client, ref domain.Reference) (*tg.InputChannel, error) {
	if ref.Username != "" {
		return p.resolveByUsername(ctx, api, ref.Username)
	}

	return p.resolveByID(ctx, api, ref.BareChannelID())
}

func (p *MTProtoProvider) resolveByUsername(ctx context.Context, api *tg.Client, username string) (*tg.InputChannel, error) {
	resolved, err := api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: username,
	})
	if err != nil {
		return nil, err
	}

	if len(resolved.Chats) == 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrChannelNotFound, username)
	}

	channel, ok := resolved.Chats[0].(*tg.Channel)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNotAChannel, username)
	}

	return &tg.InputChannel{
		ChannelID:  channel.ID,
		AccessHash: channel.AccessHash,
	}, nil
}

// resolveByID recovers the access hash for a bare channel id. This only
// succeeds when the session already knows the channel, which is exactly the
// restricted-content case the user session exists for.
func (p *MTProtoProvider) resolveByID(ctx context.Context, api *tg.Client, channelID int64) (*tg.InputChannel, error) {
	channels, err := api.ChannelsGetChannels(ctx, []tg.InputChannelClass{
		&tg.InputChannel{ChannelID: channelID},
	})
	if err != nil {
		return nil, err
	}

	chats, ok := channels.(*tg.MessagesChats)
	if !ok {
		return nil, fmt.Errorf("%w: %T", apperrors.ErrUnexpectedType, channels)
	}

	for _, chat := range chats.Chats {
		if channel, ok := chat.(*tg.Channel); ok && channel.ID == channelID {
			return &tg.InputChannel{
				ChannelID:  channel.ID,
				AccessHash: channel.AccessHash,
			}, nil
		}
	}

	return nil, fmt.Errorf("%w: %d", apperrors.ErrChannelNotFound, channelID)
}

// classifyErr maps MTProto privilege errors onto ErrAccessDenied so the chain
// can fall back to the next client.
func classifyErr(err error) error {
	if tgerr.Is(err, "CHANNEL_PRIVATE", "CHAT_ADMIN_REQUIRED", "CHANNEL_INVALID") {
		return fmt.Errorf("%w: %v", apperrors.ErrAccessDenied, err)
	}

	return err
}
