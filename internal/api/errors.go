package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eferbarn/solfolio/internal/adapter"
	"github.com/eferbarn/solfolio/internal/types"
)

// Common error codes
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeUpstream      = "UPSTREAM_ERROR"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error types.ServiceError `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, statusCode int, code, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: types.ServiceError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	_ = json.NewEncoder(w).Encode(response)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondServiceError maps internal errors onto HTTP responses. Upstream
// ledger failures surface as 502 with the upstream message; everything else
// is an opaque 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var ledgerErr *adapter.LedgerError
	if errors.As(err, &ledgerErr) {
		details := map[string]interface{}{}
		if ledgerErr.StatusCode != 0 {
			details["upstreamStatus"] = ledgerErr.StatusCode
		}
		respondError(w, http.StatusBadGateway, ErrCodeUpstream, ledgerErr.Message, details)
		return
	}

	var serviceErr *types.ServiceError
	if errors.As(err, &serviceErr) {
		respondError(w, http.StatusInternalServerError, serviceErr.Code, serviceErr.Message, serviceErr.Details)
		return
	}

	respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "An internal error occurred", nil)
}
