// Package adapter provides the client for the upstream ledger API, which
// serves wallet transaction history, positions and portfolio aggregates.
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/eferbarn/solfolio/internal/config"
	"github.com/eferbarn/solfolio/internal/logging"
	"golang.org/x/time/rate"
)

// LedgerError represents a failed request against the ledger API. A non-2xx
// upstream status or a network-level failure aborts the whole operation;
// partial results are never returned alongside one.
type LedgerError struct {
	StatusCode int
	Message    string
}

func (e *LedgerError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("ledger API network error: %s", e.Message)
	}
	return fmt.Sprintf("ledger API error (status %d): %s", e.StatusCode, e.Message)
}

// ledgerErrorBody matches the upstream JSON:API error envelope
type ledgerErrorBody struct {
	Errors []struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
	Message string `json:"message"`
}

// LedgerClient performs authenticated requests against the ledger API
type LedgerClient struct {
	baseURL      string
	apiKey       string
	currency     string
	defaultChain string
	pageSize     int
	client       *http.Client
	limiter      *rate.Limiter
	logger       *logging.Logger
}

// NewLedgerClient creates a ledger API client from configuration
func NewLedgerClient(cfg *config.LedgerConfig, logger *logging.Logger) *LedgerClient {
	return &LedgerClient{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		currency:     cfg.Currency,
		defaultChain: cfg.DefaultChain,
		pageSize:     cfg.PageSize,
		client:       &http.Client{Timeout: cfg.Timeout},
		limiter:      rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:       logger,
	}
}

// buildURL assembles the request URL. Bracketed parameter keys such as
// page[size] are sent verbatim; the upstream API expects them unescaped.
func (c *LedgerClient) buildURL(endpoint string, params map[string]string) string {
	if len(params) == 0 {
		return c.baseURL + endpoint
	}
	parts := make([]string, 0, len(params))
	for key, value := range params {
		if value == "" {
			continue
		}
		parts = append(parts, key+"="+url.QueryEscape(value))
	}
	return c.baseURL + endpoint + "?" + strings.Join(parts, "&")
}

// get performs an authenticated GET and decodes the JSON response into out
func (c *LedgerClient) get(ctx context.Context, endpoint string, params map[string]string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &LedgerError{Message: err.Error()}
	}

	reqURL := c.buildURL(endpoint, params)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &LedgerError{Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("Authorization", "Basic "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &LedgerError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &LedgerError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &LedgerError{StatusCode: resp.StatusCode, Message: extractErrorMessage(body, resp.Status)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &LedgerError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to decode response: %v", err)}
	}

	c.logger.WithFields(map[string]interface{}{
		"endpoint": endpoint,
		"status":   resp.StatusCode,
	}).Debug("ledger API request completed")

	return nil
}

// extractErrorMessage pulls a human-readable message out of an upstream error
// body, falling back to the HTTP status line.
func extractErrorMessage(body []byte, status string) string {
	var parsed ledgerErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if len(parsed.Errors) > 0 {
			e := parsed.Errors[0]
			if e.Detail != "" {
				return e.Detail
			}
			if e.Title != "" {
				return e.Title
			}
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	if len(body) > 0 {
		msg := string(body)
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return msg
	}
	return status
}
