package models

import "testing"

func TestMarketForSymbol(t *testing.T) {
	cases := []struct {
		symbol string
		market Market
	}{
		{"AAPL", MarketUS},
		{"0700.HK", MarketHK},
		{"0700.hk", MarketHK},
		{"600519.SS", MarketCN},
		{"000001.SZ", MarketCN},
		{"BRK.B", MarketUS},
	}
	for _, c := range cases {
		if got := MarketForSymbol(c.symbol); got != c.market {
			t.Errorf("MarketForSymbol(%q) = %v, want %v", c.symbol, got, c.market)
		}
	}
}

func TestCurrencyForSymbol(t *testing.T) {
	cases := []struct {
		symbol   string
		currency string
	}{
		{"AAPL", "USD"},
		{"0700.HK", "HKD"},
		{"600519.SS", "CNY"},
		{"000001.SZ", "CNY"},
	}
	for _, c := range cases {
		if got := CurrencyForSymbol(c.symbol); got != c.currency {
			t.Errorf("CurrencyForSymbol(%q) = %q, want %q", c.symbol, got, c.currency)
		}
	}
}

func TestErrorQuote(t *testing.T) {
	q := ErrorQuote("aapl")
	if q.Symbol != "AAPL" {
		t.Errorf("symbol = %q, want uppercased", q.Symbol)
	}
	if q.Name != ErrorQuoteName || !q.IsError() {
		t.Errorf("quote = %+v, want error placeholder", q)
	}
	if q.Price != 0 || q.ChangePercent != 0 {
		t.Errorf("error quote must carry zero price, got %+v", q)
	}
	if q.Currency != "USD" || q.Market != MarketUnknown {
		t.Errorf("error quote currency/market = %q/%q", q.Currency, q.Market)
	}
}

func TestToCNY(t *testing.T) {
	if got := ToCNY(100, "USD"); got != 715 {
		t.Errorf("ToCNY(100, USD) = %v, want 715", got)
	}
	if got := ToCNY(100, "HKD"); got != 91 {
		t.Errorf("ToCNY(100, HKD) = %v, want 91", got)
	}
	if got := ToCNY(100, "CNY"); got != 100 {
		t.Errorf("ToCNY(100, CNY) = %v, want 100", got)
	}
	if got := ToCNY(50, "EUR"); got != 50 {
		t.Errorf("unknown currency should convert 1:1, got %v", got)
	}
}
