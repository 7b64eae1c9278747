package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/eferbarn/solfolio/internal/adapter"
	"github.com/eferbarn/solfolio/internal/types"
)

// handleHealth reports service liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// walletAddress extracts and validates the wallet address path variable.
// Writes the error response and returns "" when invalid.
func walletAddress(w http.ResponseWriter, r *http.Request) string {
	address := mux.Vars(r)["address"]
	if !types.ValidateWalletAddress(address) {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput,
			"invalid wallet address", map[string]interface{}{"address": address})
		return ""
	}
	return address
}

// handleRealizedPnL serves GET /api/v1/wallets/{address}/pnl
func (s *Server) handleRealizedPnL(w http.ResponseWriter, r *http.Request) {
	address := walletAddress(w, r)
	if address == "" {
		return
	}

	result, err := s.insights.GetRealizedPnL(r.Context(), address, r.URL.Query().Get("chain"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// handleInsights serves GET /api/v1/wallets/{address}/insights
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	address := walletAddress(w, r)
	if address == "" {
		return
	}

	view, err := s.insights.GetInsights(r.Context(), address)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// handleClearInsightsCache serves DELETE /api/v1/wallets/{address}/insights/cache
func (s *Server) handleClearInsightsCache(w http.ResponseWriter, r *http.Request) {
	address := walletAddress(w, r)
	if address == "" {
		return
	}

	if err := s.insights.ClearCache(r.Context(), address); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared", "address": address})
}

// handleTransactions serves GET /api/v1/wallets/{address}/transactions, a
// single-page listing straight off the ledger API.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	address := walletAddress(w, r)
	if address == "" {
		return
	}

	pageSize := 0
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput,
				"page_size must be a positive integer", nil)
			return
		}
		pageSize = parsed
	}

	transactions, err := s.ledger.GetTransactions(r.Context(), adapter.TransactionParams{
		WalletAddress: address,
		ChainID:       r.URL.Query().Get("chain"),
		PageSize:      pageSize,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"address":      address,
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// handlePortfolio serves GET /api/v1/wallets/{address}/portfolio
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	address := walletAddress(w, r)
	if address == "" {
		return
	}

	portfolio, err := s.ledger.GetPortfolio(r.Context(), address)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, portfolio)
}

// handlePositions serves GET /api/v1/wallets/{address}/positions. The 24h
// movement is re-aggregated over the filtered position set rather than taken
// from the portfolio summary, so it matches what the response contains.
func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	address := walletAddress(w, r)
	if address == "" {
		return
	}

	positions, err := s.ledger.GetPositions(r.Context(), address, r.URL.Query().Get("chain"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"address":   address,
		"positions": positions,
		"count":     len(positions),
		"change24h": adapter.Calculate24hPnL(positions),
	})
}

// handleChart serves GET /api/v1/charts/{fungibleID}
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	fungibleID := mux.Vars(r)["fungibleID"]
	if fungibleID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "missing fungible ID", nil)
		return
	}

	points, err := s.ledger.GetFungibleChart(r.Context(), fungibleID, r.URL.Query().Get("period"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"fungibleId": fungibleID,
		"points":     points,
	})
}
