package adapter

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/eferbarn/solfolio/internal/types"
)

// Position represents a single wallet holding as reported upstream.
// Consumed as-is; never analyzed further here.
type Position struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes struct {
		Name         string              `json:"name"`
		PositionType string              `json:"position_type"`
		Quantity     types.Quantity      `json:"quantity"`
		Value        *float64            `json:"value"`
		Price        *float64            `json:"price"`
		Changes      *PositionChanges    `json:"changes"`
		FungibleInfo *types.FungibleInfo `json:"fungible_info,omitempty"`
	} `json:"attributes"`
}

// PositionChanges carries upstream 24h movement figures
type PositionChanges struct {
	Absolute1D *float64 `json:"absolute_1d"`
	Percent1D  *float64 `json:"percent_1d"`
}

// WalletPortfolio represents the upstream portfolio-level aggregate
type WalletPortfolio struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes struct {
		PositionsDistributionByType  map[string]float64 `json:"positions_distribution_by_type"`
		PositionsDistributionByChain map[string]float64 `json:"positions_distribution_by_chain"`
		Total                        struct {
			Positions float64 `json:"positions"`
		} `json:"total"`
		Changes struct {
			Absolute1D float64 `json:"absolute_1d"`
			Percent1D  float64 `json:"percent_1d"`
		} `json:"changes"`
	} `json:"attributes"`
}

// ChartPoint is one point of an asset price chart
type ChartPoint struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

type positionsPage struct {
	Data []Position `json:"data"`
}

type portfolioEnvelope struct {
	Data WalletPortfolio `json:"data"`
}

type chartEnvelope struct {
	Data struct {
		Attributes struct {
			Points []ChartPoint `json:"points"`
		} `json:"attributes"`
	} `json:"data"`
}

// GetPositions fetches the wallet's simple positions. Positions with no
// symbol, no value, or incomplete quantity/price data are dropped, matching
// what the consumer can actually render.
func (c *LedgerClient) GetPositions(ctx context.Context, walletAddress, chainID string) ([]Position, error) {
	params := map[string]string{
		"filter[positions]": "only_simple",
		"currency":          c.currency,
		"filter[trash]":     "only_non_trash",
		"sort":              "value",
	}
	if chainID != "" {
		params["filter[chain_ids]"] = chainID
	}

	var page positionsPage
	if err := c.get(ctx, "/wallets/"+walletAddress+"/positions/", params, &page); err != nil {
		return nil, err
	}

	valid := make([]Position, 0, len(page.Data))
	for _, pos := range page.Data {
		attrs := pos.Attributes
		if attrs.FungibleInfo == nil || attrs.FungibleInfo.Symbol == "" {
			continue
		}
		if attrs.Value == nil || *attrs.Value == 0 {
			continue
		}
		if attrs.Quantity.Numeric == "" || attrs.Price == nil {
			continue
		}
		valid = append(valid, pos)
	}
	return valid, nil
}

// GetPortfolio fetches the wallet's portfolio summary
func (c *LedgerClient) GetPortfolio(ctx context.Context, walletAddress string) (*WalletPortfolio, error) {
	params := map[string]string{
		"filter[positions]": "only_simple",
		"currency":          c.currency,
	}

	var envelope portfolioEnvelope
	if err := c.get(ctx, "/wallets/"+walletAddress+"/portfolio", params, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// GetFungibleChart fetches the price chart for an asset over a period
// ("1h", "1d", "1w", "1m", "3m", "1y", "max").
func (c *LedgerClient) GetFungibleChart(ctx context.Context, fungibleID, period string) ([]ChartPoint, error) {
	if period == "" {
		period = "1d"
	}
	params := map[string]string{
		"period":   period,
		"currency": c.currency,
	}

	var envelope chartEnvelope
	if err := c.get(ctx, "/fungibles/"+fungibleID+"/charts", params, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data.Attributes.Points, nil
}

// DayPnL is the 24h movement aggregated over a position set
type DayPnL struct {
	Absolute decimal.Decimal `json:"absolute"`
	Percent  decimal.Decimal `json:"percent"`
}

// Calculate24hPnL aggregates 24h movement over a filtered position set. The
// percentage is taken against the back-solved prior-day base (current value
// minus the day's delta); a non-positive base yields zero rather than a
// division blowup.
func Calculate24hPnL(positions []Position) DayPnL {
	totalAbsolute := decimal.Zero
	totalValue := decimal.Zero

	for _, pos := range positions {
		if pos.Attributes.Value != nil {
			totalValue = totalValue.Add(decimal.NewFromFloat(*pos.Attributes.Value))
		}
		if pos.Attributes.Changes != nil && pos.Attributes.Changes.Absolute1D != nil {
			totalAbsolute = totalAbsolute.Add(decimal.NewFromFloat(*pos.Attributes.Changes.Absolute1D))
		}
	}

	base := totalValue.Sub(totalAbsolute)
	percent := decimal.Zero
	if base.IsPositive() {
		percent = totalAbsolute.Div(base).Mul(decimal.NewFromInt(100))
	}
	return DayPnL{Absolute: totalAbsolute, Percent: percent}
}
