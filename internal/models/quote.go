package models

import "strings"

// Market tags the exchange region a symbol trades on.
type Market string

const (
	MarketUS      Market = "US"
	MarketHK      Market = "HK"
	MarketCN      Market = "CN"
	MarketUnknown Market = "N/A"
)

// Quote is a point-in-time price for a symbol. Quotes are ephemeral and
// never persisted.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"changePercent"`
	Currency      string  `json:"currency"`
	Market        Market  `json:"market"`
}

// ErrorQuoteName marks a quote whose upstream fetch failed.
const ErrorQuoteName = "Error Fetching"

// IsError reports whether the quote is the failed-fetch placeholder.
func (q Quote) IsError() bool {
	return q.Name == ErrorQuoteName
}

// ErrorQuote returns the placeholder quote for a symbol whose price could
// not be fetched. Price zero, currency USD, market unknown.
func ErrorQuote(symbol string) Quote {
	return Quote{
		Symbol:        strings.ToUpper(symbol),
		Name:          ErrorQuoteName,
		Price:         0,
		ChangePercent: 0,
		Currency:      "USD",
		Market:        MarketUnknown,
	}
}

// MarketForSymbol classifies a symbol by its exchange suffix.
// .HK trades in Hong Kong, .SS and .SZ on the mainland, everything else
// is treated as a US listing.
func MarketForSymbol(symbol string) Market {
	s := strings.ToUpper(symbol)
	switch {
	case strings.HasSuffix(s, ".HK"):
		return MarketHK
	case strings.HasSuffix(s, ".SS"), strings.HasSuffix(s, ".SZ"):
		return MarketCN
	default:
		return MarketUS
	}
}

// CurrencyForSymbol returns the settlement currency implied by the
// symbol's exchange suffix.
func CurrencyForSymbol(symbol string) string {
	switch MarketForSymbol(symbol) {
	case MarketHK:
		return "HKD"
	case MarketCN:
		return "CNY"
	default:
		return "USD"
	}
}
