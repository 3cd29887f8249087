package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliohq/folio/internal/models"
)

func TestStockQuote(t *testing.T) {
	s := newTestServer(t)
	s.fetcher.set(models.Quote{
		Symbol: "0700.HK", Name: "Tencent", Price: 350, ChangePercent: -0.4,
		Currency: "HKD", Market: models.MarketHK,
	})

	resp, body := s.do(t, http.MethodGet, "/api/stock?symbol=0700.hk", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var q models.Quote
	require.NoError(t, json.Unmarshal(body, &q))
	assert.Equal(t, "Tencent", q.Name)
	assert.Equal(t, 350.0, q.Price)
	assert.Equal(t, models.MarketHK, q.Market)
}

func TestStockQuoteNeverFails(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodGet, "/api/stock?symbol=BROKEN", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "upstream failure must not surface as an HTTP error")

	var q models.Quote
	require.NoError(t, json.Unmarshal(body, &q))
	assert.Equal(t, "BROKEN", q.Symbol)
	assert.Equal(t, models.ErrorQuoteName, q.Name)
	assert.Zero(t, q.Price)
}

func TestStockQuoteMissingSymbol(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodGet, "/api/stock", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
