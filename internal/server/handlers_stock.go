package server

import (
	"net/http"
	"strings"
)

// handleStock handles GET /api/stock?symbol=. Quote fetches never fail
// outward; a broken upstream comes back as the placeholder quote with
// status 200.
func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol query parameter is required")
		return
	}

	q := s.app.Quotes.GetQuote(r.Context(), symbol)
	WriteJSON(w, http.StatusOK, q)
}
