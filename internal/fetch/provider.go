// Package fetch retrieves referenced messages over MTProto and normalizes
// them into relayable content records.
package fetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"

	"github.com/tgrelay/relaybot/internal/core/domain"
	apperrors "github.com/tgrelay/relaybot/internal/core/errors"
	"github.com/tgrelay/relaybot/internal/platform/observability"
)

const (
	fetchStatusOK     = "ok"
	fetchStatusDenied = "denied"
	fetchStatusError  = "error"
)

// Snapshot is a fetched message together with the API client that produced
// it. Media downloads must go through the same session the message came from.
type Snapshot struct {
	Msg *tg.Message
	api *tg.Client
}

// Provider fetches a referenced message with whatever privileges its session
// has.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, ref domain.Reference) (*Snapshot, error)
}

// Chain tries providers in order of decreasing capability. Each provider is
// tried at most once per reference; this is a privilege fallback, not a retry
// loop.
type Chain struct {
	providers []Provider
	logger    *zerolog.Logger
}

func NewChain(logger *zerolog.Logger, providers ...Provider) *Chain {
	return &Chain{
		providers: providers,
		logger:    logger,
	}
}

// Fetch returns the first successful snapshot. A provider failure of any
// class falls through to the next provider, not just access denial: a
// transient error on one session still leaves the other a chance to serve
// the reference. When all are exhausted the reference is reported as not
// found.
func (c *Chain) Fetch(ctx context.Context, ref domain.Reference) (*Snapshot, error) {
	if len(c.providers) == 0 {
		return nil, apperrors.ErrClientNotConfigured
	}

	for _, p := range c.providers {
		snap, err := p.Fetch(ctx, ref)
		if err == nil {
			observability.FetchesTotal.WithLabelValues(p.Name(), fetchStatusOK).Inc()

			return snap, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		status := fetchStatusError
		if errors.Is(err, apperrors.ErrAccessDenied) {
			status = fetchStatusDenied
		}

		observability.FetchesTotal.WithLabelValues(p.Name(), status).Inc()
		c.logger.Warn().Err(err).Str("provider", p.Name()).Str("url", ref.URL).Msg("fetch failed")
	}

	return nil, fmt.Errorf("%w: %s", apperrors.ErrNotFound, ref.URL)
}
