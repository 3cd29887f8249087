package models

import (
	"strings"

	"github.com/google/uuid"
)

// Holding is a position in a single symbol. Quantity is always positive
// while the holding exists; drained holdings are removed, never stored
// at zero.
type Holding struct {
	ID        string  `json:"id"`
	Symbol    string  `json:"symbol"`
	Quantity  float64 `json:"quantity"`
	CostBasis float64 `json:"costBasis"` // per-share, in the symbol's settlement currency
}

// CashBalances holds the three supported cash currencies. Balances are
// signed; spending is never blocked on insufficient funds.
type CashBalances struct {
	USD float64 `json:"USD"`
	HKD float64 `json:"HKD"`
	CNY float64 `json:"CNY"`
}

// Get returns the balance for a currency code. Unknown codes read as zero.
func (c *CashBalances) Get(currency string) float64 {
	switch currency {
	case "USD":
		return c.USD
	case "HKD":
		return c.HKD
	case "CNY":
		return c.CNY
	default:
		return 0
	}
}

// Set writes the balance for a known currency code. Unknown codes are
// ignored; callers validate currency before mutating.
func (c *CashBalances) Set(currency string, value float64) {
	switch currency {
	case "USD":
		c.USD = value
	case "HKD":
		c.HKD = value
	case "CNY":
		c.CNY = value
	}
}

// Add applies a signed delta to a known currency code.
func (c *CashBalances) Add(currency string, delta float64) {
	c.Set(currency, c.Get(currency)+delta)
}

// ValidCurrency reports whether code names a supported cash currency.
func ValidCurrency(code string) bool {
	return code == "USD" || code == "HKD" || code == "CNY"
}

// Portfolio is the persisted state for one owner: the held positions in
// insertion order plus the cash balances.
type Portfolio struct {
	Holdings []Holding    `json:"holdings"`
	Cash     CashBalances `json:"cash"`
}

// NewPortfolio returns an empty portfolio with zero cash.
func NewPortfolio() *Portfolio {
	return &Portfolio{Holdings: []Holding{}}
}

// FindHolding returns the holding for a symbol, or nil.
func (p *Portfolio) FindHolding(symbol string) *Holding {
	for i := range p.Holdings {
		if p.Holdings[i].Symbol == symbol {
			return &p.Holdings[i]
		}
	}
	return nil
}

// Symbols returns the held symbols in insertion order.
func (p *Portfolio) Symbols() []string {
	out := make([]string, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		out = append(out, h.Symbol)
	}
	return out
}

// AddOrMergeHolding adds a position, merging into an existing holding for
// the same symbol with a weighted-average cost basis. Symbols are
// normalized to uppercase; new symbols append at the end.
func (p *Portfolio) AddOrMergeHolding(symbol string, quantity, costBasis float64) {
	symbol = strings.ToUpper(symbol)
	if h := p.FindHolding(symbol); h != nil {
		total := h.Quantity + quantity
		if total > 0 {
			h.CostBasis = (h.Quantity*h.CostBasis + quantity*costBasis) / total
		}
		h.Quantity = total
		return
	}
	p.Holdings = append(p.Holdings, Holding{
		ID:        uuid.New().String(),
		Symbol:    symbol,
		Quantity:  quantity,
		CostBasis: costBasis,
	})
}

// Buy purchases quantity shares at price, debiting cash in the symbol's
// settlement currency. Overdraft is allowed.
func (p *Portfolio) Buy(symbol string, quantity, price float64) {
	p.Cash.Add(CurrencyForSymbol(symbol), -quantity*price)
	p.AddOrMergeHolding(symbol, quantity, price)
}

// Sell disposes of quantity shares at price, crediting cash in the
// symbol's settlement currency. Selling more than is held removes the
// holding entirely; the cash credit is always quantity*price, even when
// no holding for the symbol exists.
func (p *Portfolio) Sell(symbol string, quantity, price float64) {
	symbol = strings.ToUpper(symbol)
	p.Cash.Add(CurrencyForSymbol(symbol), quantity*price)

	h := p.FindHolding(symbol)
	if h == nil {
		return
	}
	if quantity >= h.Quantity {
		p.removeBySymbol(symbol)
		return
	}
	h.Quantity -= quantity
}

// RemoveHolding deletes a holding by ID without touching cash.
// Returns false if no holding carries the ID.
func (p *Portfolio) RemoveHolding(id string) bool {
	for i := range p.Holdings {
		if p.Holdings[i].ID == id {
			p.Holdings = append(p.Holdings[:i], p.Holdings[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Portfolio) removeBySymbol(symbol string) {
	for i := range p.Holdings {
		if p.Holdings[i].Symbol == symbol {
			p.Holdings = append(p.Holdings[:i], p.Holdings[i+1:]...)
			return
		}
	}
}

// AdjustCash applies a signed delta to a cash balance.
func (p *Portfolio) AdjustCash(currency string, delta float64) {
	p.Cash.Add(currency, delta)
}

// SetCash overwrites a cash balance.
func (p *Portfolio) SetCash(currency string, value float64) {
	p.Cash.Set(currency, value)
}

// Clone returns a deep copy of the portfolio.
func (p *Portfolio) Clone() *Portfolio {
	cp := *p
	cp.Holdings = make([]Holding, len(p.Holdings))
	copy(cp.Holdings, p.Holdings)
	return &cp
}
