package engine

import (
	"github.com/shopspring/decimal"

	"signal-trading-bot/internal/types"
)

var (
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
)

// selectPrice prefers the last trade and falls back to the bid/ask midpoint
// for symbols that have a two-sided quote but no recent print.
func selectPrice(q types.Quote) decimal.Decimal {
	if q.Last.IsPositive() {
		return q.Last
	}
	return q.Bid.Add(q.Ask).Div(two)
}

// quantityFor is floor(notional / price). It never rounds up, so the order
// value never exceeds the configured notional.
func quantityFor(notional, price decimal.Decimal) int64 {
	if !price.IsPositive() || !notional.IsPositive() {
		return 0
	}
	q, _ := notional.QuoRem(price, 0)
	return q.IntPart()
}

// pnlPct is the unrealized profit of a position in percent of its cost basis.
func pnlPct(pos types.Position) decimal.Decimal {
	qty := decimal.NewFromInt(pos.Quantity)
	pnl := pos.MarketPrice.Sub(pos.AverageCost).Mul(qty)
	invested := pos.AverageCost.Mul(qty)
	return pnl.Div(invested).Mul(hundred)
}
