package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/foliohq/folio/internal/common"
	"github.com/foliohq/folio/internal/models"
	"github.com/foliohq/folio/internal/services/portfolio"
	"github.com/foliohq/folio/internal/services/valuation"
)

// writePortfolioError maps service errors onto status codes.
func (s *Server) writePortfolioError(w http.ResponseWriter, err error) {
	if errors.Is(err, portfolio.ErrValidation) {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error().Err(err).Msg("Portfolio operation failed")
	WriteError(w, http.StatusInternalServerError, "portfolio operation failed")
}

// handlePortfolio handles GET and POST /api/portfolio. The owner comes
// from the request session; anonymous callers share the guest record.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	owner := common.SessionFrom(r.Context()).StorageOwner()

	switch r.Method {
	case http.MethodGet:
		p, err := s.app.Portfolios.Get(r.Context(), owner)
		if err != nil {
			s.writePortfolioError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, p)

	case http.MethodPost:
		var p models.Portfolio
		if !DecodeJSON(w, r, &p) {
			return
		}
		if p.Holdings == nil {
			p.Holdings = []models.Holding{}
		}
		if err := s.app.Portfolios.Replace(r.Context(), owner, &p); err != nil {
			s.writePortfolioError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

type tradeRequest struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

// handleBuy handles POST /api/portfolio/buy.
func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req tradeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	owner := common.SessionFrom(r.Context()).StorageOwner()
	p, err := s.app.Portfolios.Buy(r.Context(), owner, req.Symbol, req.Quantity, req.Price)
	if err != nil {
		s.writePortfolioError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// handleSell handles POST /api/portfolio/sell.
func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req tradeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	owner := common.SessionFrom(r.Context()).StorageOwner()
	p, err := s.app.Portfolios.Sell(r.Context(), owner, req.Symbol, req.Quantity, req.Price)
	if err != nil {
		s.writePortfolioError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

type cashRequest struct {
	Currency string   `json:"currency"`
	Delta    *float64 `json:"delta,omitempty"`
	Value    *float64 `json:"value,omitempty"`
}

// handleCash handles POST /api/portfolio/cash. A delta adjusts the
// balance; a value overwrites it.
func (s *Server) handleCash(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req cashRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	owner := common.SessionFrom(r.Context()).StorageOwner()

	var p *models.Portfolio
	var err error
	switch {
	case req.Delta != nil && req.Value != nil:
		WriteError(w, http.StatusBadRequest, "provide delta or value, not both")
		return
	case req.Delta != nil:
		p, err = s.app.Portfolios.AdjustCash(r.Context(), owner, req.Currency, *req.Delta)
	case req.Value != nil:
		p, err = s.app.Portfolios.SetCash(r.Context(), owner, req.Currency, *req.Value)
	default:
		WriteError(w, http.StatusBadRequest, "delta or value is required")
		return
	}
	if err != nil {
		s.writePortfolioError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// handleRemoveHolding handles DELETE /api/portfolio/holding/{id}.
func (s *Server) handleRemoveHolding(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/portfolio/holding/")
	owner := common.SessionFrom(r.Context()).StorageOwner()

	p, err := s.app.Portfolios.RemoveHolding(r.Context(), owner, id)
	if err != nil {
		s.writePortfolioError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// handleValuation handles GET /api/portfolio/valuation, computed from
// the refresher's latest quote snapshot.
func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	owner := common.SessionFrom(r.Context()).StorageOwner()
	p, err := s.app.Portfolios.Get(r.Context(), owner)
	if err != nil {
		s.writePortfolioError(w, err)
		return
	}

	v := valuation.Compute(p, s.app.Refresher.Quotes())
	WriteJSON(w, http.StatusOK, v)
}

// handleChart handles GET /api/portfolio/chart with a PNG donut of the
// current allocation.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	owner := common.SessionFrom(r.Context()).StorageOwner()
	p, err := s.app.Portfolios.Get(r.Context(), owner)
	if err != nil {
		s.writePortfolioError(w, err)
		return
	}

	v := valuation.Compute(p, s.app.Refresher.Quotes())
	png, err := valuation.RenderAllocationChart(v)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, "nothing to chart: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
