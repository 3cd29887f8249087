// Package valuation computes display-ready portfolio aggregates from a
// holdings snapshot and a quote set.
package valuation

import (
	"github.com/foliohq/folio/internal/models"
)

// Compute values a portfolio against a quote map. Holdings without a
// usable quote are marked pending: they contribute zero market value and
// are excluded from daily and unrealized P&L. All percentages read 0
// when total net worth is zero or negative.
func Compute(p *models.Portfolio, quotes map[string]models.Quote) *models.Valuation {
	v := &models.Valuation{
		Holdings: make([]models.HoldingValuation, 0, len(p.Holdings)),
		Cash:     make([]models.CashValuation, 0, 3),
	}

	for _, h := range p.Holdings {
		row := models.HoldingValuation{
			ID:        h.ID,
			Symbol:    h.Symbol,
			Quantity:  h.Quantity,
			CostBasis: h.CostBasis,
			Currency:  models.CurrencyForSymbol(h.Symbol),
			Market:    models.MarketForSymbol(h.Symbol),
			Pending:   true,
		}

		q, ok := quotes[h.Symbol]
		if ok && !q.IsError() {
			row.Pending = false
			row.Name = q.Name
			row.Price = q.Price
			row.ChangePercent = q.ChangePercent
			if q.Currency != "" {
				row.Currency = q.Currency
			}
			row.Market = q.Market

			row.MarketValueNative = q.Price * h.Quantity
			row.MarketValueCNY = models.ToCNY(row.MarketValueNative, row.Currency)
			row.UnrealizedPnLCNY = row.MarketValueCNY - models.ToCNY(h.Quantity*h.CostBasis, row.Currency)

			v.DailyPnLCNY += models.ToCNY(q.Price*q.ChangePercent/100*h.Quantity, row.Currency)
		}

		v.TotalNetWorthCNY += row.MarketValueCNY
		v.Holdings = append(v.Holdings, row)
	}

	cashRows := []models.CashValuation{
		{Currency: "USD", Balance: p.Cash.USD},
		{Currency: "HKD", Balance: p.Cash.HKD},
		{Currency: "CNY", Balance: p.Cash.CNY},
	}
	for i := range cashRows {
		cashRows[i].ValueCNY = models.ToCNY(cashRows[i].Balance, cashRows[i].Currency)
		v.TotalCashCNY += cashRows[i].ValueCNY
	}
	v.TotalNetWorthCNY += v.TotalCashCNY
	v.Cash = cashRows

	// Allocation shares only make sense against a positive total.
	if v.TotalNetWorthCNY > 0 {
		for i := range v.Holdings {
			v.Holdings[i].AllocationPct = v.Holdings[i].MarketValueCNY / v.TotalNetWorthCNY * 100
		}
		for i := range v.Cash {
			v.Cash[i].AllocationPct = v.Cash[i].ValueCNY / v.TotalNetWorthCNY * 100
		}
		v.CashAllocPct = v.TotalCashCNY / v.TotalNetWorthCNY * 100
	}

	return v
}
