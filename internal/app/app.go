// Package app wires configuration, the fetch providers and the relay bot
// together.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tgrelay/relaybot/internal/cache"
	"github.com/tgrelay/relaybot/internal/fetch"
	"github.com/tgrelay/relaybot/internal/platform/config"
	"github.com/tgrelay/relaybot/internal/platform/observability"
	"github.com/tgrelay/relaybot/internal/relaybot"
)

type App struct {
	cfg    *config.Config
	logger *zerolog.Logger
}

func New(cfg *config.Config, logger *zerolog.Logger) *App {
	return &App{cfg: cfg, logger: logger}
}

// StartHealthServer serves liveness and metrics endpoints until the context
// is canceled.
func (a *App) StartHealthServer(ctx context.Context) error {
	return observability.NewServer(a.cfg.HealthPort, a.logger).Start(ctx)
}

// Run starts the MTProto sessions and the bot update loop, blocking until
// the context is canceled or the bot stops.
func (a *App) Run(ctx context.Context) error {
	store := cache.NewMemory()

	sessions := make([]*fetch.MTProtoProvider, 0, 2)

	if a.cfg.UserSessionEnabled() {
		sessions = append(sessions, fetch.NewUserProvider(a.cfg, a.logger))
	} else {
		a.logger.Warn().Msg("user session not configured, restricted content may be inaccessible")
	}

	sessions = append(sessions, fetch.NewBotProvider(a.cfg, a.logger))

	providers := make([]fetch.Provider, 0, len(sessions))

	for _, s := range sessions {
		go a.runProvider(ctx, s)

		providers = append(providers, s)
	}

	chain := fetch.NewChain(a.logger, providers...)
	service := fetch.NewService(chain, fetch.NormalizeOptions{MaxDownloadBytes: a.cfg.MaxDownloadBytes}, a.logger)

	b, err := relaybot.New(a.cfg, service, store, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	return b.Run(ctx)
}

func (a *App) runProvider(ctx context.Context, p *fetch.MTProtoProvider) {
	if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error().Err(err).Str("provider", p.Name()).Msg("provider stopped")
	}
}
