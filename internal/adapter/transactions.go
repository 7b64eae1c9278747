package adapter

import (
	"context"
	"net/url"
	"strconv"

	"github.com/eferbarn/solfolio/internal/types"
)

// pageAfterParam is the cursor query parameter of the transactions endpoint
const pageAfterParam = "page[after]"

// TransactionParams holds the request parameters for transaction retrieval
type TransactionParams struct {
	WalletAddress string
	ChainID       string // empty means the configured default chain
	Currency      string // empty means the configured default currency
	PageSize      int    // capped at the server maximum
}

// transactionPage matches the ledger API's paginated list envelope
type transactionPage struct {
	Data  []types.Transaction `json:"data"`
	Links pageLinks           `json:"links"`
}

type pageLinks struct {
	Self string `json:"self,omitempty"`
	Next string `json:"next,omitempty"`
}

// queryParams builds the transaction endpoint query from params and defaults
func (c *LedgerClient) queryParams(p TransactionParams, pageSize int) map[string]string {
	currency := p.Currency
	if currency == "" {
		currency = c.currency
	}
	chain := p.ChainID
	if chain == "" {
		chain = c.defaultChain
	}
	return map[string]string{
		"currency":          currency,
		"page[size]":        strconv.Itoa(pageSize),
		"filter[trash]":     "no_filter",
		"filter[chain_ids]": chain,
	}
}

// GetTransactions fetches a single page of transactions for a wallet,
// bypassing the pagination loop. Suitable for requests at or below one page.
func (c *LedgerClient) GetTransactions(ctx context.Context, p TransactionParams) ([]types.Transaction, error) {
	pageSize := p.PageSize
	if pageSize <= 0 || pageSize > c.pageSize {
		pageSize = c.pageSize
	}

	var page transactionPage
	endpoint := "/wallets/" + p.WalletAddress + "/transactions/"
	if err := c.get(ctx, endpoint, c.queryParams(p, pageSize), &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

// GetTransactionsPaginated walks the cursor-paginated transactions endpoint,
// accumulating records in API-delivered order up to maxTransactions. Pages
// are requested at the server's maximum size; the continuation cursor is
// extracted from the next-page link of each response. The final result is
// trimmed to exactly maxTransactions. Any upstream failure aborts the whole
// fetch; pages already retrieved are discarded.
func (c *LedgerClient) GetTransactionsPaginated(ctx context.Context, p TransactionParams, maxTransactions int) ([]types.Transaction, error) {
	if maxTransactions <= 0 {
		return nil, nil
	}

	all := make([]types.Transaction, 0, min(maxTransactions, c.pageSize))
	endpoint := "/wallets/" + p.WalletAddress + "/transactions/"
	cursor := ""

	for len(all) < maxTransactions {
		params := c.queryParams(p, c.pageSize)
		if cursor != "" {
			params[pageAfterParam] = cursor
		}

		var page transactionPage
		if err := c.get(ctx, endpoint, params, &page); err != nil {
			return nil, err
		}

		all = append(all, page.Data...)
		c.logger.WithFields(map[string]interface{}{
			"wallet": p.WalletAddress,
			"page":   len(page.Data),
			"total":  len(all),
		}).Debug("fetched transaction page")

		// An empty page cannot advance the accumulator; following its next
		// link would loop forever against a misbehaving server.
		if len(page.Data) == 0 {
			break
		}
		if page.Links.Next == "" || len(all) >= maxTransactions {
			break
		}

		cursor = extractCursor(page.Links.Next)
		if cursor == "" {
			// A next link whose cursor decodes to nothing means no further
			// data, not an error.
			break
		}
	}

	if len(all) > maxTransactions {
		all = all[:maxTransactions]
	}
	return all, nil
}

// extractCursor pulls the continuation cursor out of a next-page link.
// Returns "" for absent or unparseable links.
func extractCursor(next string) string {
	u, err := url.Parse(next)
	if err != nil {
		return ""
	}
	return u.Query().Get(pageAfterParam)
}
