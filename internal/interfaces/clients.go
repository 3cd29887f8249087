package interfaces

import (
	"context"

	"github.com/foliohq/folio/internal/models"
)

// QuoteFetcher is the raw market-data transport. Implementations may
// fail; the quote service absorbs failures into placeholder quotes.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// EmailSender delivers transactional mail. Send failures surface to the
// caller.
type EmailSender interface {
	SendCode(ctx context.Context, to, code string) error
}
