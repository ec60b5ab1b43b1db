package fetch

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tgrelay/relaybot/internal/core/domain"
)

// Service fetches a referenced message and normalizes it into a content
// record ready for delivery.
type Service struct {
	chain  *Chain
	opts   NormalizeOptions
	logger *zerolog.Logger
}

func NewService(chain *Chain, opts NormalizeOptions, logger *zerolog.Logger) *Service {
	return &Service{chain: chain, opts: opts, logger: logger}
}

func (s *Service) Content(ctx context.Context, ref domain.Reference) (domain.ContentRecord, error) {
	snap, err := s.chain.Fetch(ctx, ref)
	if err != nil {
		return domain.ContentRecord{}, err
	}

	return Normalize(ctx, snap, s.opts, s.logger), nil
}
