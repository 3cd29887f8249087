package interfaces

import (
	"context"

	"github.com/foliohq/folio/internal/models"
)

// QuoteProvider is the never-fails quote surface served to handlers and
// the refresh loop. Failed fetches come back as placeholder quotes.
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) models.Quote
	GetQuotes(ctx context.Context, symbols []string) map[string]models.Quote
}
