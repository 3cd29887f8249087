package models

// FX conversion rates, fixed, expressed as CNY per one unit of the
// currency. There is no live FX feed.
var fxToCNY = map[string]float64{
	"USD": 7.15,
	"HKD": 0.91,
	"CNY": 1.00,
}

// ToCNY converts an amount from the given currency. Unknown currencies
// convert at 1:1.
func ToCNY(amount float64, currency string) float64 {
	if rate, ok := fxToCNY[currency]; ok {
		return amount * rate
	}
	return amount
}

// FXRate returns the CNY-per-unit rate for a currency, 1.0 when unknown.
func FXRate(currency string) float64 {
	if rate, ok := fxToCNY[currency]; ok {
		return rate
	}
	return 1.0
}

// HoldingValuation is one priced position inside a Valuation. Pending
// rows have no usable quote and contribute nothing to totals.
type HoldingValuation struct {
	ID                string  `json:"id"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Quantity          float64 `json:"quantity"`
	CostBasis         float64 `json:"costBasis"`
	Price             float64 `json:"price"`
	Currency          string  `json:"currency"`
	Market            Market  `json:"market"`
	ChangePercent     float64 `json:"changePercent"`
	MarketValueNative float64 `json:"marketValueNative"`
	MarketValueCNY    float64 `json:"marketValueCNY"`
	UnrealizedPnLCNY  float64 `json:"unrealizedPnLCNY"`
	AllocationPct     float64 `json:"allocationPct"`
	Pending           bool    `json:"pending"`
}

// CashValuation is one cash currency's contribution to net worth.
type CashValuation struct {
	Currency      string  `json:"currency"`
	Balance       float64 `json:"balance"`
	ValueCNY      float64 `json:"valueCNY"`
	AllocationPct float64 `json:"allocationPct"`
}

// Valuation is the computed snapshot of a portfolio against a quote set.
type Valuation struct {
	Holdings         []HoldingValuation `json:"holdings"`
	Cash             []CashValuation    `json:"cash"`
	TotalCashCNY     float64            `json:"totalCashCNY"`
	CashAllocPct     float64            `json:"cashAllocPct"`
	TotalNetWorthCNY float64            `json:"totalNetWorthCNY"`
	DailyPnLCNY      float64            `json:"dailyPnLCNY"`
}
