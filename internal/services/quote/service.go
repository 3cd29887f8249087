// Package quote provides the never-fails quote surface over the market
// data transport. Fetch failures collapse into placeholder quotes so a
// broken upstream can never break a valuation pass.
package quote

import (
	"context"
	"strings"

	"github.com/foliohq/folio/internal/common"
	"github.com/foliohq/folio/internal/interfaces"
	"github.com/foliohq/folio/internal/models"
)

// Service implements QuoteProvider over a fallible QuoteFetcher.
type Service struct {
	fetcher interfaces.QuoteFetcher
	logger  *common.Logger
}

// NewService creates a new quote service.
func NewService(fetcher interfaces.QuoteFetcher, logger *common.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		logger:  logger,
	}
}

// GetQuote fetches a quote for one symbol. Transport errors, upstream
// rejections, and malformed payloads all come back as the placeholder
// quote; the caller never sees an error.
func (s *Service) GetQuote(ctx context.Context, symbol string) models.Quote {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	q, err := s.fetcher.FetchQuote(ctx, symbol)
	if err != nil || q == nil {
		s.logger.Warn().
			Str("symbol", symbol).
			Err(err).
			Msg("Quote fetch failed, serving placeholder")
		return models.ErrorQuote(symbol)
	}
	return *q
}

// GetQuotes fetches a batch of symbols into a fresh map. The map is
// always complete: failed symbols carry placeholder quotes. Callers swap
// the result in whole rather than patching an existing map.
func (s *Service) GetQuotes(ctx context.Context, symbols []string) map[string]models.Quote {
	out := make(map[string]models.Quote, len(symbols))
	for _, sym := range symbols {
		key := strings.ToUpper(strings.TrimSpace(sym))
		if key == "" {
			continue
		}
		if _, done := out[key]; done {
			continue
		}
		out[key] = s.GetQuote(ctx, key)
	}
	return out
}

// Ensure Service implements QuoteProvider
var _ interfaces.QuoteProvider = (*Service)(nil)
