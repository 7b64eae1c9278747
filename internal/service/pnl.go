package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/eferbarn/solfolio/internal/logging"
	"github.com/eferbarn/solfolio/internal/types"
)

// RealizedPnL is the outcome of FIFO cost-basis accounting over a
// transaction set: the signed realized USD total and the number of sell
// events that contributed to it.
type RealizedPnL struct {
	Total  decimal.Decimal `json:"total"`
	Trades int             `json:"trades"`
}

// lot records one acquisition awaiting disposal
type lot struct {
	quantity decimal.Decimal // remaining units
	unitCost decimal.Decimal // USD per unit at acquisition
}

// fifoBook keeps per-symbol lot queues in acquisition order. Slices are used
// as pop-front queues; a drained lot is removed from the front.
type fifoBook map[string][]lot

// consume drains lots for a symbol front-first until the requested quantity
// is satisfied or the queue runs out, returning the accumulated cost basis.
// Quantity sold beyond all recorded acquisitions carries zero cost.
func (b fifoBook) consume(symbol string, quantity decimal.Decimal) decimal.Decimal {
	costBasis := decimal.Zero
	remaining := quantity
	lots := b[symbol]

	for remaining.IsPositive() && len(lots) > 0 {
		front := &lots[0]
		used := decimal.Min(remaining, front.quantity)
		costBasis = costBasis.Add(used.Mul(front.unitCost))
		front.quantity = front.quantity.Sub(used)
		remaining = remaining.Sub(used)
		if front.quantity.IsZero() {
			lots = lots[1:]
		}
	}

	b[symbol] = lots
	return costBasis
}

// add appends a new acquisition lot for a symbol
func (b fifoBook) add(symbol string, quantity, unitCost decimal.Decimal) {
	b[symbol] = append(b[symbol], lot{quantity: quantity, unitCost: unitCost})
}

// CalculateRealizedPnL computes realized profit and loss over a transaction
// set using FIFO cost-basis matching. Transactions are processed in ascending
// effective-time order so acquisitions are recorded before the disposals that
// consume them. Only confirmed trade and swap transactions with both
// qualifying incoming and outgoing transfers participate; a qualifying
// transfer carries a USD value and an asset symbol. The trade counter
// advances once per outgoing transfer, and each qualifying transaction's fee
// is subtracted once.
func CalculateRealizedPnL(transactions []types.Transaction) RealizedPnL {
	log := logging.Global().WithField("component", "pnl")

	sorted := make([]types.Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectiveTime().Before(sorted[j].EffectiveTime())
	})

	book := make(fifoBook)
	total := decimal.Zero
	trades := 0

	for i := range sorted {
		tx := &sorted[i]
		attrs := &tx.Attributes

		if attrs.Status != types.StatusConfirmed {
			continue
		}
		if !attrs.OperationType.IsRealizing() {
			continue
		}

		var incoming, outgoing []*types.Transfer
		for j := range attrs.Transfers {
			transfer := &attrs.Transfers[j]
			if transfer.Value == nil || transfer.Symbol() == "" {
				continue
			}
			switch transfer.Direction {
			case types.DirectionIn:
				incoming = append(incoming, transfer)
			case types.DirectionOut:
				outgoing = append(outgoing, transfer)
			}
		}

		// A one-sided transaction is not a trade from this wallet's
		// perspective; its fee is skipped along with it.
		if len(incoming) == 0 || len(outgoing) == 0 {
			continue
		}

		for _, out := range outgoing {
			quantity, ok := out.Quantity.Decimal()
			if !ok || !quantity.IsPositive() {
				continue
			}
			saleValue, _ := out.USDValue()

			costBasis := book.consume(out.Symbol(), quantity)
			total = total.Add(saleValue.Sub(costBasis))
			trades++
		}

		for _, inc := range incoming {
			quantity, ok := inc.Quantity.Decimal()
			if !ok || !quantity.IsPositive() {
				continue
			}
			value, _ := inc.USDValue()
			book.add(inc.Symbol(), quantity, value.Div(quantity))
		}

		if attrs.Fee != nil && attrs.Fee.Value != nil {
			total = total.Sub(decimal.NewFromFloat(*attrs.Fee.Value))
		}
	}

	log.WithFields(map[string]interface{}{
		"transactions": len(transactions),
		"trades":       trades,
		"total":        total.String(),
	}).Debug("realized PnL computed")

	return RealizedPnL{Total: total, Trades: trades}
}
